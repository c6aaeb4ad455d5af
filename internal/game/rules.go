package game

// 棋盘与规则常量
const (
	GridSize              = 5
	DefaultMaxTurns       = 15
	DefaultTurnTimer      = 600 // seconds
	DefaultStartingPoints = 20
	MaxStartingPoints     = 99
	MinRoster             = 3
	MaxRoster             = 8
	OpenDoorCost          = 1
)

// Direction 门的朝向
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	West  Direction = "west"
	East  Direction = "east"
)

// Directions lists every direction in door generation order.
var Directions = []Direction{North, South, West, East}

// Offset returns the grid delta of a step in direction d.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case West:
		return -1, 0
	case East:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the direction facing back.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	case East:
		return West
	}
	return d
}

// Neighbor resolves the coordinate adjacent to (x, y) in direction d. ok is
// false when the step leaves the grid.
func Neighbor(x, y int, d Direction) (nx, ny int, ok bool) {
	dx, dy := d.Offset()
	if dx == 0 && dy == 0 {
		return x, y, false
	}
	nx, ny = x+dx, y+dy
	if nx < 0 || ny < 0 || nx >= GridSize || ny >= GridSize {
		return x, y, false
	}
	return nx, ny, true
}

// Rand is the random source used by board generation and capacity rolls.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}
