// Package arbiter decides door capacities and who gets through a door.
package arbiter

import "github.com/Cryborg/sugoroku/internal/game"

// RollCapacity draws a capacity uniformly in [0, max(1, active)+1] and stamps
// it with turn.
func RollCapacity(d *game.Door, turn, active int, rng game.Rand) int {
	top := max(1, active) + 1
	d.Capacity = rng.IntN(top + 1)
	d.CapacityTurn = turn
	return d.Capacity
}

// RollOccupied rolls every door of every room that holds an alive or blocked
// player. Doors already rolled for turn are left alone. It returns the number
// of doors rolled.
func RollOccupied(s *game.State, turn int, rng game.Rand) int {
	active := s.ActiveCount()
	floor := s.MinCapacity(turn)
	rolled := 0
	for _, room := range s.OccupiedRooms() {
		rolled += rollRoom(s, room, turn, active, floor, rng)
	}
	return rolled
}

// EnsureRolled rolls the doors of a room a player just reached when they
// were not rolled for turn yet.
func EnsureRolled(s *game.State, room *game.Room, turn int, rng game.Rand) int {
	return rollRoom(s, room, turn, s.ActiveCount(), s.MinCapacity(turn), rng)
}

// ApplyFloor raises every capacity rolled for turn to at least floor.
func ApplyFloor(s *game.State, turn, floor int) {
	for _, d := range s.Doors {
		if d.RolledFor(turn) && d.Capacity < floor {
			d.Capacity = floor
		}
	}
}

func rollRoom(s *game.State, room *game.Room, turn, active, floor int, rng game.Rand) int {
	rolled := 0
	for _, d := range s.DoorsOf(room.ID) {
		if d.RolledFor(turn) {
			continue
		}
		if RollCapacity(d, turn, active, rng) < floor {
			d.Capacity = floor
		}
		rolled++
	}
	return rolled
}

// Outcome is the result of an immediate crossing attempt.
type Outcome struct {
	Passed bool
	Target *game.Room
	// Ahead counts the players who already crossed this door this turn.
	Ahead int
}

// ResolveImmediate lets p through d when fewer other players already crossed
// d this turn than its capacity allows. Otherwise p is blocked in place.
// The caller must have recorded p's choice of d.
func ResolveImmediate(s *game.State, p *game.Player, d *game.Door, turn int) Outcome {
	target := s.Target(d)
	out := Outcome{Target: target}
	if target == nil {
		return out
	}

	for _, c := range s.ChoicesFor(d.ID, turn) {
		if c.PlayerID == p.ID {
			continue
		}
		if other := s.Player(c.PlayerID); other != nil && other.CurrentRoomID == target.ID {
			out.Ahead++
		}
	}

	if out.Ahead < d.CapacityFor(turn) {
		Cross(p, d, target)
		out.Passed = true
		return out
	}
	p.Block()
	return out
}

// BatchResult lists who passed a door and who got stuck.
type BatchResult struct {
	DoorID  int
	Passed  []*game.Player
	Blocked []*game.Player
}

// ResolveBatch settles every commitment to d for turn at once. Committed
// players still standing in the door's room pass when they fit; when they
// don't, capacity of them are picked uniformly at random and the rest are
// blocked.
func ResolveBatch(s *game.State, d *game.Door, turn int, rng game.Rand) BatchResult {
	res := BatchResult{DoorID: d.ID}
	target := s.Target(d)
	if target == nil {
		return res
	}

	var committed []*game.Player
	for _, c := range s.ChoicesFor(d.ID, turn) {
		p := s.Player(c.PlayerID)
		if p == nil || !p.IsAlive() || p.CurrentRoomID != d.RoomID {
			continue
		}
		committed = append(committed, p)
	}

	capacity := d.CapacityFor(turn)
	if len(committed) > capacity {
		rng.Shuffle(len(committed), func(i, j int) {
			committed[i], committed[j] = committed[j], committed[i]
		})
	}

	for i, p := range committed {
		if i < capacity {
			Cross(p, d, target)
			res.Passed = append(res.Passed, p)
			continue
		}
		p.Block()
		res.Blocked = append(res.Blocked, p)
	}
	return res
}

// Cross moves p through d into target and applies the door's happiness
// modifier.
func Cross(p *game.Player, d *game.Door, target *game.Room) {
	p.MoveTo(target.ID)
	p.AddHappiness(d.HappinessModifier)
}
