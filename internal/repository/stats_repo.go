package repository

import (
	"context"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"gomoku_webapp/internal/domain"
)

// Ключи счетчиков. Единственное, что переживает рестарт процесса:
// состояние матчей не сохраняется никогда.
const (
	keyVisits  = "gomoku:stats:visits"
	keyMatches = "gomoku:stats:matches"
	keyOnline  = "gomoku:stats:online"
)

// StatsRepository хранит агрегатные счетчики в Redis. Nil-получатель
// допустим: без Redis сервер работает, счетчики просто не сохраняются.
type StatsRepository struct {
	rdb *redis.Client
}

func NewStatsRepository(rdb *redis.Client) *StatsRepository {
	return &StatsRepository{rdb: rdb}
}

func (s *StatsRepository) IncrVisits(ctx context.Context) {
	s.incr(ctx, keyVisits)
}

func (s *StatsRepository) IncrMatches(ctx context.Context) {
	s.incr(ctx, keyMatches)
}

func (s *StatsRepository) IncrOnline(ctx context.Context) {
	s.incr(ctx, keyOnline)
}

func (s *StatsRepository) DecrOnline(ctx context.Context) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.rdb.Decr(ctx, keyOnline).Err(); err != nil {
		log.Printf("StatsRepository.DecrOnline: %v", err)
	}
}

func (s *StatsRepository) incr(ctx context.Context, key string) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, key).Err(); err != nil {
		log.Printf("StatsRepository.incr: ключ=%s: %v", key, err)
	}
}

// Snapshot читает все счетчики; отсутствующий ключ считается нулем.
func (s *StatsRepository) Snapshot(ctx context.Context) (domain.Stats, error) {
	if s == nil || s.rdb == nil {
		return domain.Stats{}, nil
	}

	vals, err := s.rdb.MGet(ctx, keyVisits, keyMatches, keyOnline).Result()
	if err != nil {
		return domain.Stats{}, err
	}

	out := domain.Stats{}
	targets := []*int64{&out.Visits, &out.Matches, &out.Online}
	for i, v := range vals {
		if v == nil {
			continue
		}
		if sv, ok := v.(string); ok {
			if n, err := strconv.ParseInt(sv, 10, 64); err == nil {
				*targets[i] = n
			}
		}
	}
	return out, nil
}

// ResetOnline обнуляет счетчик онлайна при старте процесса: после
// падения сервера в Redis мог остаться ненулевой остаток.
func (s *StatsRepository) ResetOnline(ctx context.Context) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, keyOnline, 0, 0).Err(); err != nil {
		log.Printf("StatsRepository.ResetOnline: %v", err)
	}
}
