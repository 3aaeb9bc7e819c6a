package ws

import (
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"gomoku_webapp/internal/domain"
	"gomoku_webapp/internal/game"
)

// ограничение длины danmaku-сообщения в рунах
const danmakuMaxRunes = 200

// Room - один матч на двоих. Адресация игроков - слотами 1 и 2
// (индекс в clients + 1); слот 1 достается тому, кто оказался в комнате
// раньше. Вся игровая логика живет в game.Gomoku, комната отвечает за
// соответствие слотов соединениям, таймер хода и рассылку.
type Room struct {
	ID  string
	hub *Hub

	mu      sync.Mutex
	clients [2]*Client
	game    *game.Gomoku
	started bool
	closed  bool

	turnDuration time.Duration
	timer        *time.Timer
	// номер раунда, для которого взведен таймер: устаревшие срабатывания
	// отбрасываются
	timerRound     int
	timerStartedAt time.Time

	createdAt time.Time
}

// NewRoom создает комнату; c2 может быть nil (приватная комната ждет
// второго участника).
func NewRoom(id string, c1, c2 *Client, hub *Hub, turnDuration time.Duration) *Room {
	return &Room{
		ID:           id,
		hub:          hub,
		clients:      [2]*Client{c1, c2},
		game:         game.NewGomoku(),
		turnDuration: turnDuration,
		createdAt:    time.Now(),
	}
}

// takeSecondSlot занимает второй слот, если он свободен и матч еще не шел.
func (r *Room) takeSecondSlot(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.started || r.clients[1] != nil {
		return false
	}
	r.clients[1] = c
	return true
}

// StartGame активирует матч: случайный первый ход, персональный
// game_start каждому, запуск таймера без регенерации.
func (r *Room) StartGame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.started || r.clients[0] == nil || r.clients[1] == nil {
		return
	}
	r.started = true

	firstTurn := rand.Intn(2) + 1
	r.game.Start(firstTurn)

	log.Printf("Room.StartGame: комната=%s первый ход=%d", r.ID, firstTurn)

	score := r.game.Score()
	for i, c := range r.clients {
		opponent := r.clients[1-i]
		r.sendLocked(c, Message{
			Type: MsgGameStart,
			Payload: map[string]any{
				"room_id":           r.ID,
				"player":            i + 1,
				"opponent_nickname": opponent.Nickname,
				"current_turn":      firstTurn,
				"score":             score,
			},
		})
	}

	r.startTurnTimerLocked(false)
}

// HandleMove применяет ход. Нелегальные ходы отбрасываются молча,
// кроме попытки сыграть в заблокированную клетку - она получает
// явный error_message.
func (r *Room) HandleMove(c *Client, p MovePayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.started {
		return
	}
	slot := r.slotOf(c)
	if slot == 0 || p.Player != slot {
		log.Printf("Room.HandleMove: комната=%s клиент=%s слот=%d заявил player=%d, отброшено", r.ID, c.ID, slot, p.Player)
		return
	}

	res, err := r.game.ApplyMove(slot, p.X, p.Y)
	if err != nil {
		log.Printf("Room.HandleMove: комната=%s слот=%d ход (%d,%d) отклонен: %v", r.ID, slot, p.X, p.Y, err)
		if err == game.ErrCellBlocked {
			r.sendLocked(c, Message{Type: MsgErrorMessage, Payload: map[string]any{"text": err.Error()}})
		}
		return
	}

	r.sendLocked(r.opponentOf(slot), Message{
		Type: MsgOpponentMove,
		Payload: map[string]any{
			"x":      p.X,
			"y":      p.Y,
			"player": slot,
		},
	})

	switch {
	case res.Win:
		r.finishMatchLocked(slot)
	case res.TurnEnded:
		r.startTurnTimerLocked(true)
	default:
		// продолжение после double: ход тот же, отсчет заново без регенерации
		log.Printf("Room.HandleMove: комната=%s слот=%d осталось бонусных ходов=%d", r.ID, slot, res.ExtraRemaining)
		r.startTurnTimerLocked(false)
	}
}

// HandleSkill применяет навык. Отклоненный навык не рассылается.
func (r *Room) HandleSkill(c *Client, p SkillPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.started {
		return
	}
	slot := r.slotOf(c)
	if slot == 0 || p.Player != slot {
		log.Printf("Room.HandleSkill: комната=%s клиент=%s слот=%d заявил player=%d, отброшено", r.ID, c.ID, slot, p.Player)
		return
	}

	var x, y int
	if p.X != nil {
		x = *p.X
	}
	if p.Y != nil {
		y = *p.Y
	}

	res, err := r.game.ApplySkill(slot, domain.Skill(p.Skill), x, y)
	if err != nil {
		log.Printf("Room.HandleSkill: комната=%s слот=%d навык=%s отклонен: %v", r.ID, slot, p.Skill, err)
		return
	}

	payload := map[string]any{
		"skill":  string(res.Skill),
		"player": slot,
		"cost":   res.Cost,
	}
	if res.HasTarget {
		payload["x"] = res.X
		payload["y"] = res.Y
	}
	r.sendLocked(r.opponentOf(slot), Message{Type: MsgOpponentSkill, Payload: payload})

	switch {
	case res.Win:
		r.finishMatchLocked(slot)
	case res.TurnEnded:
		r.startTurnTimerLocked(true)
	default:
		// double: ход продолжается на оставшемся таймере
	}
}

// HandleRestartVote учитывает голос за рестарт; при двух голосах матч
// перезапускается с сохранением счета.
func (r *Room) HandleRestartVote(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.started {
		return
	}
	slot := r.slotOf(c)
	if slot == 0 {
		return
	}

	votes := r.game.VoteRestart(c.ID)
	log.Printf("Room.HandleRestartVote: комната=%s слот=%d голосов=%d", r.ID, slot, votes)

	if votes < 2 {
		r.sendLocked(c, Message{Type: MsgRestartAck})
		r.sendLocked(r.opponentOf(slot), Message{Type: MsgRestartRequested})
		return
	}

	firstTurn := rand.Intn(2) + 1
	r.game.Restart(firstTurn)
	r.broadcastLocked(Message{
		Type:    MsgGameRestart,
		Payload: map[string]any{"current_turn": firstTurn},
	})
	r.startTurnTimerLocked(false)
}

// HandleDanmaku пересылает сообщение второму участнику без изменений.
func (r *Room) HandleDanmaku(c *Client, p DanmakuPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	slot := r.slotOf(c)
	if slot == 0 || p.Player != slot {
		return
	}

	text := p.Message
	if runes := []rune(text); len(runes) > danmakuMaxRunes {
		text = string(runes[:danmakuMaxRunes])
	}
	r.sendLocked(r.opponentOf(slot), Message{
		Type: MsgDanmaku,
		Payload: map[string]any{
			"message": text,
			"player":  slot,
		},
	})
}

// Close разрушает комнату после ухода leaver: таймер гасится,
// оставшийся участник получает opponent_left.
func (r *Room) Close(leaver *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.stopTimerLocked()

	log.Printf("Room.Close: комната=%s закрыта, ушел клиент=%s, прожила %s", r.ID, leaver.ID, time.Since(r.createdAt).Round(time.Second))

	for _, cl := range r.clients {
		if cl != nil && cl.ID != leaver.ID {
			r.sendLocked(cl, Message{Type: MsgOpponentLeft})
		}
	}
}

// startTurnTimerLocked начинает новый отсчет хода: старое поколение
// таймера обесценивается, выполняется бухгалтерия начала хода,
// рассылается timer_sync, взводится срабатывание. Вызывается под r.mu.
func (r *Room) startTurnTimerLocked(regen bool) {
	r.stopTimerLocked()
	r.timerRound++
	currentRound := r.timerRound
	r.timerStartedAt = time.Now()

	snap := r.game.TickTurnStart(regen)
	r.broadcastLocked(Message{
		Type: MsgTimerSync,
		Payload: map[string]any{
			"current_turn":  snap.CurrentTurn,
			"duration":      r.turnDuration.Milliseconds(),
			"timestamp":     r.timerStartedAt.UnixMilli(),
			"energy":        snap.Energy,
			"blocked_spots": snap.Blocked,
		},
	})

	r.timer = time.AfterFunc(r.turnDuration, func() {
		r.handleTurnTimeout(currentRound)
	})
}

// handleTurnTimeout обрабатывает истечение таймера поколения forRound.
// Срабатывание устаревшего поколения ничего не мутирует.
func (r *Room) handleTurnTimeout(forRound int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || forRound != r.timerRound {
		log.Printf("Room.handleTurnTimeout: устаревший таймер forRound=%d, текущий=%d, пропуск", forRound, r.timerRound)
		return
	}

	res := r.game.ApplyTimeout()
	if res.Player == 0 {
		return
	}

	log.Printf("Room.handleTurnTimeout: комната=%s слот=%d энергия=%d", r.ID, res.Player, res.Energy)

	r.broadcastLocked(Message{
		Type: MsgTurnTimeout,
		Payload: map[string]any{
			"player": res.Player,
			"energy": res.Energy,
		},
	})

	if res.Loss {
		r.finishMatchLocked(res.Winner)
		return
	}

	// ход остается у просрочившего, новый отсчет без регенерации
	r.startTurnTimerLocked(false)
}

// finishMatchLocked завершает матч: таймер гасится, обоим уходит
// game_over, матч попадает в счетчики. Счет уже обновлен игрой.
func (r *Room) finishMatchLocked(winner int) {
	r.stopTimerLocked()
	score := r.game.Score()

	log.Printf("Room.finishMatchLocked: комната=%s победитель=%d счет=%v", r.ID, winner, score)

	r.broadcastLocked(Message{
		Type: MsgGameOver,
		Payload: map[string]any{
			"winner": winner,
			"score":  score,
		},
	})

	if r.hub != nil {
		r.hub.noteMatch()
	}
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Room) opponentOf(slot int) *Client {
	return r.clients[2-slot]
}

func (r *Room) slotOf(c *Client) int {
	for i, cl := range r.clients {
		if cl != nil && cl.ID == c.ID {
			return i + 1
		}
	}
	return 0
}

// sendLocked - неблокирующая отправка под блокировкой комнаты; Send
// буферизован, переполнение означает мертвого клиента.
func (r *Room) sendLocked(c *Client, msg Message) {
	if c == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Room.sendLocked: комната=%s ошибка сериализации: %v", r.ID, err)
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("Room.sendLocked: комната=%s клиент=%s канал Send заполнен, тип=%s отброшен", r.ID, c.ID, msg.Type)
	}
}

func (r *Room) broadcastLocked(msg Message) {
	for _, c := range r.clients {
		r.sendLocked(c, msg)
	}
}
