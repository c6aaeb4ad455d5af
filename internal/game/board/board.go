// Package board generates the 5×5 room grid of a new session.
package board

import "github.com/Cryborg/sugoroku/internal/game"

const (
	// FreeRoomChance 开启免费房间时每个房间免费的概率
	FreeRoomChance = 0.10
	// MaxHappinessModifier bounds door happiness modifiers to [-max, +max].
	MaxHappinessModifier = 5
)

// costPool 房间花费池：点数 → 数量
var costPool = []struct {
	cost  int
	count int
}{
	{4, 3},
	{3, 5},
	{2, 7},
	{1, 8},
}

// Options controls board generation.
type Options struct {
	FreeRooms bool
}

// Layout is a freshly generated board.
type Layout struct {
	Rooms []*game.Room
	Doors []*game.Door
}

// Start returns the start room of the layout.
func (l *Layout) Start() *game.Room {
	for _, r := range l.Rooms {
		if r.IsStart {
			return r
		}
	}
	return nil
}

// Generate builds the grid: the exit in a random corner, the start on the
// centre cross, shuffled room costs and one door record per direction that
// stays on the grid.
func Generate(rng game.Rand, opts Options) *Layout {
	corners := [][2]int{{0, 0}, {game.GridSize - 1, 0}, {0, game.GridSize - 1}, {game.GridSize - 1, game.GridSize - 1}}
	exit := corners[rng.IntN(len(corners))]

	center := game.GridSize / 2
	var cross [][2]int
	for i := 0; i < game.GridSize; i++ {
		if c := [2]int{center, i}; c != exit {
			cross = append(cross, c)
		}
		if i == center {
			continue
		}
		if c := [2]int{i, center}; c != exit {
			cross = append(cross, c)
		}
	}
	start := cross[rng.IntN(len(cross))]

	costs := shuffledCosts(rng)

	layout := &Layout{}
	roomID := 1
	for y := 0; y < game.GridSize; y++ {
		for x := 0; x < game.GridSize; x++ {
			pos := [2]int{x, y}
			room := &game.Room{
				ID:        roomID,
				X:         x,
				Y:         y,
				DoorCount: doorCount(x, y),
				IsStart:   pos == start,
				IsExit:    pos == exit,
			}
			if room.IsStart {
				room.IsVisited = true
			}
			if !room.IsStart && !room.IsExit {
				room.PointsCost, costs = costs[0], costs[1:]
				if opts.FreeRooms && rng.Float64() < FreeRoomChance {
					room.PointsCost = 0
				}
			}
			layout.Rooms = append(layout.Rooms, room)
			roomID++
		}
	}

	doorID := 1
	for _, room := range layout.Rooms {
		for _, dir := range game.Directions {
			if _, _, ok := game.Neighbor(room.X, room.Y, dir); !ok {
				continue
			}
			layout.Doors = append(layout.Doors, &game.Door{
				ID:                doorID,
				RoomID:            room.ID,
				Direction:         dir,
				HappinessModifier: rng.IntN(2*MaxHappinessModifier+1) - MaxHappinessModifier,
			})
			doorID++
		}
	}
	return layout
}

func shuffledCosts(rng game.Rand) []int {
	var costs []int
	for _, c := range costPool {
		for i := 0; i < c.count; i++ {
			costs = append(costs, c.cost)
		}
	}
	rng.Shuffle(len(costs), func(i, j int) {
		costs[i], costs[j] = costs[j], costs[i]
	})
	return costs
}

func doorCount(x, y int) int {
	n := 0
	for _, dir := range game.Directions {
		if _, _, ok := game.Neighbor(x, y, dir); ok {
			n++
		}
	}
	return n
}
