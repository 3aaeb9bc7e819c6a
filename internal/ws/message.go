package ws

import "encoding/json"

// Message - исходящий конверт
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Envelope - входящий конверт; payload разбирается по типу
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Входящие типы - закрытый набор, все остальное отбрасывается
const (
	MsgJoinRandom     = "join_random"
	MsgCreatePrivate  = "create_private"
	MsgJoinPrivate    = "join_private"
	MsgLeaveRoom      = "leave_room"
	MsgLeaveQueue     = "leave_queue"
	MsgGameMove       = "game_move"
	MsgGameSkill      = "game_skill"
	MsgRestartRequest = "game_restart_request"
	MsgRestartAgree   = "game_restart_agree"
	MsgDanmaku        = "danmaku"
)

// Исходящие типы
const (
	MsgWaitingForMatch  = "waiting_for_match"
	MsgRoomCreated      = "room_created"
	MsgGameStart        = "game_start"
	MsgOpponentMove     = "opponent_move"
	MsgOpponentSkill    = "opponent_skill"
	MsgTimerSync        = "timer_sync"
	MsgTurnTimeout      = "turn_timeout"
	MsgGameOver         = "game_over"
	MsgGameRestart      = "game_restart"
	MsgRestartRequested = "restart_requested"
	MsgRestartAck       = "restart_ack"
	MsgOpponentLeft     = "opponent_left"
	MsgErrorMessage     = "error_message"
)

type JoinPayload struct {
	RoomID   string `json:"room_id"`
	Nickname string `json:"nickname"`
}

type MovePayload struct {
	RoomID string `json:"room_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Player int    `json:"player"`
}

// X/Y - указатели: double приходит без цели
type SkillPayload struct {
	RoomID string `json:"room_id"`
	Skill  string `json:"skill"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
	Player int    `json:"player"`
}

type DanmakuPayload struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
	Player  int    `json:"player"`
}
