package game

import (
	"errors"
	"sync"

	"gomoku_webapp/internal/domain"
)

// Ошибки валидации: все проверяются ДО любой мутации состояния
var (
	ErrGameInactive = errors.New("игра не активна")
	ErrNotYourTurn  = errors.New("сейчас не ваш ход")
	ErrOutOfRange   = errors.New("координаты вне доски")
	ErrCellOccupied = errors.New("клетка уже занята")
	ErrCellBlocked  = errors.New("клетка временно заблокирована")
	ErrNoEnergy     = errors.New("недостаточно энергии")
	ErrBadTarget    = errors.New("недопустимая цель навыка")
	ErrUnknownSkill = errors.New("неизвестный навык")
)

// Gomoku - авторитетное состояние одного матча. Комната - единственный
// писатель; структура держит собственный RWMutex, так что геттеры
// безопасны и из колбэка таймера.
type Gomoku struct {
	mu          sync.RWMutex
	board       Board
	currentTurn int // 1 или 2
	active      bool
	energy      [2]int
	score       [2]int
	extraMoves  int // > 0 только пока активно продолжение после double
	blocked     []domain.BlockedSpot
	votes       map[string]struct{} // connection id -> голос за рестарт
}

func NewGomoku() *Gomoku {
	return &Gomoku{
		votes: make(map[string]struct{}),
	}
}

// Start активирует игру с заданным первым ходом (1 или 2).
func (g *Gomoku) Start(firstTurn int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = true
	g.currentTurn = firstTurn
}

// MoveResult описывает итог успешно принятого хода.
type MoveResult struct {
	Win            bool
	TurnEnded      bool // управление перешло другому игроку
	NextTurn       int
	ExtraRemaining int // оставшиеся ходы продолжения double
}

// ApplyMove валидирует и применяет ход игрока slot в клетку (x, y).
// Победа проверяется сразу после постановки камня, до любого
// переключения хода.
func (g *Gomoku) ApplyMove(slot, x, y int) (MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return MoveResult{}, ErrGameInactive
	}
	if slot != g.currentTurn {
		return MoveResult{}, ErrNotYourTurn
	}
	if !g.board.InBounds(x, y) {
		return MoveResult{}, ErrOutOfRange
	}
	if g.board.At(x, y) != CellEmpty {
		return MoveResult{}, ErrCellOccupied
	}
	if g.isBlockedLocked(x, y) {
		return MoveResult{}, ErrCellBlocked
	}

	g.board.Place(x, y, Cell(slot))

	if g.board.CheckWin(x, y, Cell(slot)) {
		g.finishLocked(slot)
		return MoveResult{Win: true}, nil
	}

	// продолжение после double: ход не переходит, пока счетчик не исчерпан
	if g.extraMoves > 0 {
		g.extraMoves--
		if g.extraMoves > 0 {
			return MoveResult{ExtraRemaining: g.extraMoves}, nil
		}
	}

	g.currentTurn = otherSlot(g.currentTurn)
	return MoveResult{TurnEnded: true, NextTurn: g.currentTurn}, nil
}

// SkillResult описывает итог успешно примененного навыка.
type SkillResult struct {
	Skill     domain.Skill
	Cost      int
	X, Y      int
	HasTarget bool
	Win       bool
	TurnEnded bool
	NextTurn  int
}

// ApplySkill валидирует и применяет навык. Энергия списывается только
// после того, как прошли все проверки; отклоненный запрос не меняет
// ничего.
func (g *Gomoku) ApplySkill(slot int, skill domain.Skill, x, y int) (SkillResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return SkillResult{}, ErrGameInactive
	}
	if slot != g.currentTurn {
		return SkillResult{}, ErrNotYourTurn
	}
	cost, ok := skill.Cost()
	if !ok {
		return SkillResult{}, ErrUnknownSkill
	}
	if g.energy[slot-1] < cost {
		return SkillResult{}, ErrNoEnergy
	}

	res := SkillResult{Skill: skill, Cost: cost, X: x, Y: y}

	switch skill {
	case domain.SkillDouble:
		g.energy[slot-1] -= cost
		g.extraMoves = domain.ExtraMoves
		return res, nil

	case domain.SkillDestroy:
		if !g.board.InBounds(x, y) {
			return SkillResult{}, ErrOutOfRange
		}
		// подходит любой камень, свой тоже
		if g.board.At(x, y) == CellEmpty {
			return SkillResult{}, ErrBadTarget
		}
		g.energy[slot-1] -= cost
		g.board.Clear(x, y)
		g.blocked = append(g.blocked, domain.BlockedSpot{X: x, Y: y, Rounds: domain.BlockedRounds})
		g.currentTurn = otherSlot(g.currentTurn)
		res.HasTarget = true
		res.TurnEnded = true
		res.NextTurn = g.currentTurn
		return res, nil

	case domain.SkillRebel:
		if !g.board.InBounds(x, y) {
			return SkillResult{}, ErrOutOfRange
		}
		target := g.board.At(x, y)
		if target == CellEmpty || target == Cell(slot) {
			return SkillResult{}, ErrBadTarget
		}
		g.energy[slot-1] -= cost
		g.board.Place(x, y, Cell(slot))
		res.HasTarget = true
		// перекрашенный камень проверяется на победу как обычный ход
		if g.board.CheckWin(x, y, Cell(slot)) {
			g.finishLocked(slot)
			res.Win = true
			return res, nil
		}
		g.currentTurn = otherSlot(g.currentTurn)
		res.TurnEnded = true
		res.NextTurn = g.currentTurn
		return res, nil
	}

	return SkillResult{}, ErrUnknownSkill
}

// TurnSnapshot - срез состояния, рассылаемый при каждом запуске таймера.
type TurnSnapshot struct {
	CurrentTurn int
	Energy      [2]int
	Blocked     []domain.BlockedSpot
}

// TickTurnStart выполняет бухгалтерию начала хода: сначала убирает
// блокировки, у которых счетчик уже дошел до нуля, затем уменьшает
// остальные; при regen дает ходящему +1 энергии (не выше предела).
// regen=false на таймаут-перезапусках и продолжениях double.
func (g *Gomoku) TickTurnStart(regen bool) TurnSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.blocked[:0]
	for _, b := range g.blocked {
		if b.Rounds <= 0 {
			continue
		}
		b.Rounds--
		kept = append(kept, b)
	}
	g.blocked = kept

	if regen && g.energy[g.currentTurn-1] < domain.MaxEnergy {
		g.energy[g.currentTurn-1]++
	}

	return TurnSnapshot{
		CurrentTurn: g.currentTurn,
		Energy:      g.energy,
		Blocked:     append([]domain.BlockedSpot(nil), g.blocked...),
	}
}

// TimeoutResult описывает итог истечения таймера хода.
type TimeoutResult struct {
	Player int // кто просрочил ход
	Energy int // его энергия после штрафа
	Loss   bool
	Winner int
}

// ApplyTimeout снимает 1 энергии с ходящего (нижнего предела нет);
// если энергия упала до -5 и ниже, матч заканчивается победой
// соперника.
func (g *Gomoku) ApplyTimeout() TimeoutResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return TimeoutResult{}
	}

	slot := g.currentTurn
	g.energy[slot-1]--

	res := TimeoutResult{Player: slot, Energy: g.energy[slot-1]}
	if g.energy[slot-1] <= domain.TimeoutLossEnergy {
		winner := otherSlot(slot)
		g.finishLocked(winner)
		res.Loss = true
		res.Winner = winner
	}
	return res
}

// VoteRestart записывает голос соединения за рестарт и возвращает
// количество собранных голосов. Повторный голос не считается дважды.
func (g *Gomoku) VoteRestart(connID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.votes[connID] = struct{}{}
	return len(g.votes)
}

// Restart начинает новый матч в той же комнате: доска, энергия,
// блокировки, продолжение и голоса обнуляются, счет сохраняется.
func (g *Gomoku) Restart(firstTurn int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.board.Reset()
	g.energy = [2]int{}
	g.extraMoves = 0
	g.blocked = nil
	g.votes = make(map[string]struct{})
	g.active = true
	g.currentTurn = firstTurn
}

// finishLocked завершает матч победой slot. Вызывается под g.mu.
func (g *Gomoku) finishLocked(slot int) {
	g.active = false
	g.extraMoves = 0
	g.score[slot-1]++
}

func (g *Gomoku) isBlockedLocked(x, y int) bool {
	for _, b := range g.blocked {
		if b.X == x && b.Y == y {
			return true
		}
	}
	return false
}

// Геттеры для комнаты и тестов

func (g *Gomoku) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

func (g *Gomoku) CurrentTurn() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentTurn
}

func (g *Gomoku) Energy() [2]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.energy
}

func (g *Gomoku) Score() [2]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.score
}

func (g *Gomoku) ExtraMovesRemaining() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.extraMoves
}

func (g *Gomoku) Blocked() []domain.BlockedSpot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]domain.BlockedSpot(nil), g.blocked...)
}

func (g *Gomoku) CellAt(x, y int) Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.board.At(x, y)
}

// SetEnergy напрямую выставляет энергию слота. Используется тестами и
// больше никем.
func (g *Gomoku) SetEnergy(slot, value int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.energy[slot-1] = value
}

func otherSlot(slot int) int {
	if slot == 1 {
		return 2
	}
	return 1
}
