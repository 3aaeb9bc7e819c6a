package game

// BoardSize - сторона доски гомоку
const BoardSize = 15

// WinLength - сколько камней подряд нужно для победы
const WinLength = 5

// Значение клетки доски
type Cell int8

const (
	CellEmpty Cell = 0
	CellP1    Cell = 1
	CellP2    Cell = 2
)

// Board - чистое состояние сетки 15x15 без какой-либо синхронизации;
// владеет ею ровно одна комната, все мутации идут через валидированные
// операции игры
type Board struct {
	cells [BoardSize][BoardSize]Cell
}

// InBounds проверяет, что координаты лежат на доске.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// At возвращает значение клетки (x, y).
func (b *Board) At(x, y int) Cell {
	return b.cells[y][x]
}

// Place ставит камень игрока в клетку. Валидация - забота вызывающего.
func (b *Board) Place(x, y int, c Cell) {
	b.cells[y][x] = c
}

// Clear очищает клетку.
func (b *Board) Clear(x, y int) {
	b.cells[y][x] = CellEmpty
}

// Reset очищает всю доску.
func (b *Board) Reset() {
	b.cells = [BoardSize][BoardSize]Cell{}
}

// направления осей: горизонталь, вертикаль, две диагонали
var winDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// CheckWin проверяет, собрал ли игрок пять в ряд через только что
// изменившуюся клетку (x, y). Скан локальный: по каждой оси считаем
// одинаковые камни наружу в обе стороны, не дальше 4 шагов в каждую
// (окно в 9 клеток с центром в (x, y)). Выход за доску или чужой камень
// обрывают счет в этом направлении.
func (b *Board) CheckWin(x, y int, c Cell) bool {
	if c == CellEmpty || !b.InBounds(x, y) || b.cells[y][x] != c {
		return false
	}

	for _, d := range winDirections {
		count := 1

		for i := 1; i < WinLength; i++ {
			nx, ny := x+d[0]*i, y+d[1]*i
			if !b.InBounds(nx, ny) || b.cells[ny][nx] != c {
				break
			}
			count++
		}

		for i := 1; i < WinLength; i++ {
			nx, ny := x-d[0]*i, y-d[1]*i
			if !b.InBounds(nx, ny) || b.cells[ny][nx] != c {
				break
			}
			count++
		}

		if count >= WinLength {
			return true
		}
	}
	return false
}
