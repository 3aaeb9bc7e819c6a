package domain

// Навык, активируемый за энергию во время своего хода
type Skill string

const (
	SkillDouble  Skill = "double"  // два дополнительных хода подряд
	SkillDestroy Skill = "destroy" // убирает камень и блокирует клетку
	SkillRebel   Skill = "rebel"   // перекрашивает камень противника
)

// Cost возвращает стоимость активации навыка в единицах энергии.
func (s Skill) Cost() (int, bool) {
	switch s {
	case SkillDouble:
		return 4, true
	case SkillDestroy:
		return 2, true
	case SkillRebel:
		return 3, true
	}
	return 0, false
}

// Правила энергии и навыков
const (
	MaxEnergy         = 5  // верхний предел энергии
	TimeoutLossEnergy = -5 // энергия <= этого после таймаута = поражение
	BlockedRounds     = 2  // сколько начал хода клетка остается заблокированной
	ExtraMoves        = 2  // сколько ходов дает навык double
)

// Ник по умолчанию для анонимных игроков
const DefaultNickname = "Player"

// Временно заблокированная клетка после навыка destroy:
// пустая на доске, но ставить в нее нельзя, пока Rounds не истечет
type BlockedSpot struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Rounds int `json:"rounds"`
}

// Агрегатные счетчики, переживающие рестарт процесса
type Stats struct {
	Visits  int64 `json:"visits"`
	Matches int64 `json:"matches"`
	Online  int64 `json:"online"`
}
