package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// тестовый клиент без живого websocket: хаб и комната трогают только Send
func newTestClient(nick string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		Nickname: nick,
		Send:     make(chan []byte, 64),
	}
}

type testMsg struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func drain(t *testing.T, c *Client) []testMsg {
	t.Helper()
	var out []testMsg
	for {
		select {
		case raw := <-c.Send:
			var m testMsg
			require.NoError(t, json.Unmarshal(raw, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func findType(msgs []testMsg, typ string) (testMsg, bool) {
	for _, m := range msgs {
		if m.Type == typ {
			return m, true
		}
	}
	return testMsg{}, false
}

func newTestHub() *Hub {
	return NewHub(time.Minute, nil)
}

func TestJoinRandomFIFOPairing(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")
	b := newTestClient("bob")

	h.JoinRandom(a)
	msgs := drain(t, a)
	_, ok := findType(msgs, MsgWaitingForMatch)
	assert.True(t, ok, "первый в очереди должен ждать")
	assert.Equal(t, 1, h.QueueLen())

	h.JoinRandom(b)
	assert.Equal(t, 0, h.QueueLen())

	aStart, ok := findType(drain(t, a), MsgGameStart)
	require.True(t, ok)
	bStart, ok := findType(drain(t, b), MsgGameStart)
	require.True(t, ok)

	// раньше вставший в очередь получает слот 1
	assert.Equal(t, float64(1), aStart.Payload["player"])
	assert.Equal(t, float64(2), bStart.Payload["player"])
	assert.Equal(t, aStart.Payload["room_id"], bStart.Payload["room_id"])
	assert.Equal(t, "bob", aStart.Payload["opponent_nickname"])
	assert.Equal(t, "alice", bStart.Payload["opponent_nickname"])
	assert.Len(t, h.Rooms, 1)
}

func TestJoinRandomDuplicateIgnored(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")

	h.JoinRandom(a)
	h.JoinRandom(a)
	assert.Equal(t, 1, h.QueueLen(), "повторный join не множит очередь")
}

func TestLeaveQueueIdempotent(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")

	h.JoinRandom(a)
	h.LeaveQueue(a)
	h.LeaveQueue(a)
	assert.Equal(t, 0, h.QueueLen())

	// следующий клиент не должен соединиться с ушедшим
	b := newTestClient("bob")
	h.JoinRandom(b)
	_, ok := findType(drain(t, b), MsgWaitingForMatch)
	assert.True(t, ok)
}

func TestCreateAndJoinPrivate(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")
	b := newTestClient("bob")

	h.CreatePrivate(a)
	created, ok := findType(drain(t, a), MsgRoomCreated)
	require.True(t, ok)
	code, ok := created.Payload["room_id"].(string)
	require.True(t, ok)
	assert.Len(t, code, 6)

	h.JoinPrivate(b, code)
	_, ok = findType(drain(t, a), MsgGameStart)
	assert.True(t, ok)
	bStart, ok := findType(drain(t, b), MsgGameStart)
	require.True(t, ok)
	assert.Equal(t, float64(2), bStart.Payload["player"], "создатель получает слот 1")
}

func TestJoinPrivateUnknownCode(t *testing.T) {
	h := newTestHub()
	b := newTestClient("bob")

	h.JoinPrivate(b, "NOSUCH")
	msg, ok := findType(drain(t, b), MsgErrorMessage)
	require.True(t, ok)
	assert.NotEmpty(t, msg.Payload["text"])
	assert.Empty(t, h.Rooms)
}

func TestRestartWithoutRoomReportsError(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")
	b := newTestClient("bob")

	h.JoinRandom(a)
	h.JoinRandom(b)
	drain(t, a)
	drain(t, b)

	// комната разрушена уходом соперника; рестарт выжившего должен
	// получить явный отказ, а не тихое молчание
	h.OnDisconnect(b)
	drain(t, a)

	h.Dispatch(a, []byte(`{"type":"game_restart_request","payload":{"room_id":"NOSUCH"}}`))
	msg, ok := findType(drain(t, a), MsgErrorMessage)
	require.True(t, ok)
	assert.NotEmpty(t, msg.Payload["text"])
	assert.Empty(t, h.Rooms)

	// та же таксономия для подтверждения рестарта
	h.Dispatch(a, []byte(`{"type":"game_restart_agree","payload":{}}`))
	_, ok = findType(drain(t, a), MsgErrorMessage)
	assert.True(t, ok)
}

func TestJoinPrivateFullRoom(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")
	b := newTestClient("bob")
	c := newTestClient("carol")

	h.CreatePrivate(a)
	created, _ := findType(drain(t, a), MsgRoomCreated)
	code := created.Payload["room_id"].(string)

	h.JoinPrivate(b, code)
	h.JoinPrivate(c, code)

	_, ok := findType(drain(t, c), MsgErrorMessage)
	assert.True(t, ok, "третий участник получает отказ")
}

func TestDisconnectTearsDownRoom(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")
	b := newTestClient("bob")

	h.JoinRandom(a)
	h.JoinRandom(b)
	drain(t, a)
	drain(t, b)

	h.OnDisconnect(a)

	_, ok := findType(drain(t, b), MsgOpponentLeft)
	assert.True(t, ok)
	assert.Empty(t, h.Rooms)

	// выживший может снова встать в очередь
	h.JoinRandom(b)
	_, ok = findType(drain(t, b), MsgWaitingForMatch)
	assert.True(t, ok)
}

func TestLeaveRoomKeepsConnection(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")
	b := newTestClient("bob")

	h.JoinRandom(a)
	h.JoinRandom(b)
	drain(t, a)
	drain(t, b)

	h.LeaveRoom(a)
	_, ok := findType(drain(t, b), MsgOpponentLeft)
	assert.True(t, ok)
	assert.Empty(t, h.Rooms)

	// ушедший остался подключен и может создать новую комнату
	h.CreatePrivate(a)
	_, ok = findType(drain(t, a), MsgRoomCreated)
	assert.True(t, ok)
}

func TestDispatchRoutesRawJSON(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")

	h.Dispatch(a, []byte(`{"type":"join_random","payload":{"nickname":"overridden"}}`))
	assert.Equal(t, 1, h.QueueLen())
	assert.Equal(t, "overridden", a.Nickname)
}

func TestDispatchUnknownTypeIsNoop(t *testing.T) {
	h := newTestHub()
	a := newTestClient("alice")

	h.Dispatch(a, []byte(`{"type":"hack_the_planet","payload":{}}`))
	h.Dispatch(a, []byte(`not json at all`))

	assert.Equal(t, 0, h.QueueLen())
	assert.Empty(t, h.Rooms)
	assert.Empty(t, drain(t, a))
}

func TestRoomCodeShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code := newRoomCode()
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.Contains(t, roomCodeAlphabet, string(ch))
		}
		seen[code] = struct{}{}
	}
	// коллизии на 50 образцах крайне маловероятны
	assert.Greater(t, len(seen), 45)
}
