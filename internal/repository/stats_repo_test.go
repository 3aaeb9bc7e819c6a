package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *StatsRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStatsRepository(rdb)
}

func TestStatsCounters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	repo.IncrVisits(ctx)
	repo.IncrVisits(ctx)
	repo.IncrMatches(ctx)
	repo.IncrOnline(ctx)
	repo.IncrOnline(ctx)
	repo.DecrOnline(ctx)

	stats, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Visits)
	assert.Equal(t, int64(1), stats.Matches)
	assert.Equal(t, int64(1), stats.Online)
}

func TestSnapshotEmptyKeys(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	stats, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Visits)
	assert.Zero(t, stats.Matches)
	assert.Zero(t, stats.Online)
}

func TestResetOnline(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	repo.IncrOnline(ctx)
	repo.IncrOnline(ctx)
	repo.ResetOnline(ctx)

	stats, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Online)
}

func TestNilRepositoryIsSafe(t *testing.T) {
	ctx := context.Background()
	var repo *StatsRepository

	repo.IncrVisits(ctx)
	repo.IncrMatches(ctx)
	repo.IncrOnline(ctx)
	repo.DecrOnline(ctx)
	repo.ResetOnline(ctx)

	stats, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Visits)
}
