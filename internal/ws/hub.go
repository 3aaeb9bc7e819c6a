package ws

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"gomoku_webapp/internal/metrics"
	"gomoku_webapp/internal/repository"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// коды приватных комнат: 6 символов, заглавные буквы и цифры
func newRoomCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand не отказывает на поддерживаемых платформах
		return uuid.New().String()[:6]
	}
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(buf)
}

type Hub struct {
	mu    sync.RWMutex
	Rooms map[string]*Room
	// FIFO очередь случайного подбора; первый вошедший получает слот 1
	queue []*Client
	// client id -> room id
	clientRoom map[string]string

	turnDuration time.Duration
	Stats        *repository.StatsRepository
}

func NewHub(turnDuration time.Duration, stats *repository.StatsRepository) *Hub {
	return &Hub{
		Rooms:        make(map[string]*Room),
		clientRoom:   make(map[string]string),
		turnDuration: turnDuration,
		Stats:        stats,
	}
}

// Dispatch разбирает входящий конверт и направляет его хабу или комнате
// клиента. Неизвестные типы и мусор отбрасываются без мутаций.
func (h *Hub) Dispatch(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Hub.Dispatch: клиент=%s не удалось разобрать конверт: %v", c.ID, err)
		return
	}

	switch env.Type {
	case MsgJoinRandom:
		var p JoinPayload
		_ = json.Unmarshal(env.Payload, &p)
		if p.Nickname != "" {
			c.Nickname = p.Nickname
		}
		h.JoinRandom(c)

	case MsgCreatePrivate:
		var p JoinPayload
		_ = json.Unmarshal(env.Payload, &p)
		if p.Nickname != "" {
			c.Nickname = p.Nickname
		}
		h.CreatePrivate(c)

	case MsgJoinPrivate:
		var p JoinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "неверный формат запроса")
			return
		}
		if p.Nickname != "" {
			c.Nickname = p.Nickname
		}
		h.JoinPrivate(c, p.RoomID)

	case MsgLeaveQueue:
		h.LeaveQueue(c)

	case MsgLeaveRoom:
		h.LeaveRoom(c)

	case MsgGameMove:
		var p MovePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "неверный формат хода")
			return
		}
		if room := h.roomOf(c); room != nil {
			room.HandleMove(c, p)
		}

	case MsgGameSkill:
		var p SkillPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "неверный формат навыка")
			return
		}
		if room := h.roomOf(c); room != nil {
			room.HandleSkill(c, p)
		}

	case MsgRestartRequest, MsgRestartAgree:
		room := h.roomOf(c)
		if room == nil {
			h.sendError(c, "комната не найдена")
			return
		}
		room.HandleRestartVote(c)

	case MsgDanmaku:
		var p DanmakuPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		if room := h.roomOf(c); room != nil {
			room.HandleDanmaku(c, p)
		}

	default:
		log.Printf("Hub.Dispatch: клиент=%s неизвестный тип=%q", c.ID, env.Type)
	}
}

// JoinRandom ставит клиента в FIFO очередь или немедленно соединяет его
// с самым ранним ожидающим.
func (h *Hub) JoinRandom(c *Client) {
	h.mu.Lock()

	// уже в комнате или в очереди - повторный запрос игнорируем
	if _, inRoom := h.clientRoom[c.ID]; inRoom {
		h.mu.Unlock()
		return
	}
	for _, waiting := range h.queue {
		if waiting.ID == c.ID {
			h.mu.Unlock()
			return
		}
	}

	if len(h.queue) == 0 {
		h.queue = append(h.queue, c)
		h.mu.Unlock()
		metrics.QueueDepth.Inc()
		log.Printf("Hub.JoinRandom: клиент=%s ждет соперника", c.ID)
		h.sendTo(c, Message{Type: MsgWaitingForMatch})
		return
	}

	// самый ранний в очереди получает слот 1
	opponent := h.queue[0]
	h.queue = h.queue[1:]

	id := uuid.New().String()[:8]
	room := NewRoom(id, opponent, c, h, h.turnDuration)
	h.Rooms[id] = room
	h.clientRoom[opponent.ID] = id
	h.clientRoom[c.ID] = id
	h.mu.Unlock()

	metrics.QueueDepth.Dec()
	metrics.ActiveRooms.Inc()
	log.Printf("Hub.JoinRandom: клиент=%s соединен с клиентом=%s комната=%s", c.ID, opponent.ID, id)
	room.StartGame()
}

// CreatePrivate создает комнату с кодом и ждет второго участника.
func (h *Hub) CreatePrivate(c *Client) {
	h.mu.Lock()

	if _, inRoom := h.clientRoom[c.ID]; inRoom {
		h.mu.Unlock()
		return
	}

	code := newRoomCode()
	for _, taken := h.Rooms[code]; taken; _, taken = h.Rooms[code] {
		code = newRoomCode()
	}

	room := NewRoom(code, c, nil, h, h.turnDuration)
	h.Rooms[code] = room
	h.clientRoom[c.ID] = code
	h.mu.Unlock()

	metrics.ActiveRooms.Inc()
	log.Printf("Hub.CreatePrivate: клиент=%s создал комнату=%s", c.ID, code)
	h.sendTo(c, Message{Type: MsgRoomCreated, Payload: map[string]any{"room_id": code}})
}

// JoinPrivate занимает второй слот приватной комнаты по ее коду.
func (h *Hub) JoinPrivate(c *Client, roomID string) {
	h.mu.Lock()

	if _, inRoom := h.clientRoom[c.ID]; inRoom {
		h.mu.Unlock()
		return
	}

	room, ok := h.Rooms[roomID]
	if !ok || !room.takeSecondSlot(c) {
		h.mu.Unlock()
		log.Printf("Hub.JoinPrivate: клиент=%s комната=%s не найдена или заполнена", c.ID, roomID)
		h.sendError(c, "комната не найдена или заполнена")
		return
	}
	h.clientRoom[c.ID] = roomID
	h.mu.Unlock()

	log.Printf("Hub.JoinPrivate: клиент=%s вошел в комнату=%s", c.ID, roomID)
	room.StartGame()
}

// LeaveQueue убирает клиента из очереди. Идемпотентна.
func (h *Hub) LeaveQueue(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromQueueLocked(c)
}

func (h *Hub) removeFromQueueLocked(c *Client) {
	for i, waiting := range h.queue {
		if waiting.ID == c.ID {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			metrics.QueueDepth.Dec()
			log.Printf("Hub: клиент=%s убран из очереди", c.ID)
			return
		}
	}
}

// LeaveRoom разрушает комнату клиента; соединение при этом остается живым.
func (h *Hub) LeaveRoom(c *Client) {
	if room := h.detachRoom(c); room != nil {
		room.Close(c)
	}
}

// OnDisconnect вызывается read pump'ом при разрыве соединения.
// Комната не переживает уход участника: реконнекта нет.
func (h *Hub) OnDisconnect(c *Client) {
	h.mu.Lock()
	h.removeFromQueueLocked(c)
	h.mu.Unlock()

	if room := h.detachRoom(c); room != nil {
		room.Close(c)
	}

	metrics.OnlineConnections.Dec()
	if h.Stats != nil {
		go h.Stats.DecrOnline(context.Background())
	}
}

// detachRoom снимает комнату клиента с учета хаба и возвращает ее.
// Закрытие комнаты выполняется уже без блокировки хаба.
func (h *Hub) detachRoom(c *Client) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := h.clientRoom[c.ID]
	if !ok {
		return nil
	}
	room := h.Rooms[roomID]
	delete(h.Rooms, roomID)
	for id, rid := range h.clientRoom {
		if rid == roomID {
			delete(h.clientRoom, id)
		}
	}
	if room != nil {
		metrics.ActiveRooms.Dec()
	}
	log.Printf("Hub.detachRoom: клиент=%s комната=%s снята с учета", c.ID, roomID)
	return room
}

// noteMatch учитывает завершенный матч в счетчиках.
func (h *Hub) noteMatch() {
	metrics.MatchesTotal.Inc()
	if h.Stats != nil {
		go h.Stats.IncrMatches(context.Background())
	}
}

func (h *Hub) roomOf(c *Client) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if roomID, ok := h.clientRoom[c.ID]; ok {
		return h.Rooms[roomID]
	}
	return nil
}

func (h *Hub) QueueLen() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.queue)
}

func (h *Hub) sendError(c *Client, text string) {
	h.sendTo(c, Message{Type: MsgErrorMessage, Payload: map[string]any{"text": text}})
}

// неблокирующая отправка: переполненный Send означает мертвого клиента
func (h *Hub) sendTo(c *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Hub.sendTo: ошибка сериализации: %v", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("Hub.sendTo: клиент=%s канал Send заполнен, тип=%s отброшен", c.ID, msg.Type)
	}
}
