package game

import "github.com/Cryborg/sugoroku/internal/apperrors"

// IsOpen 门是否已被打开
func (d *Door) IsOpen() bool {
	return d.OpenedBy != nil
}

// Open spends OpenDoorCost of the player's points and records them as the
// opener. Nothing changes when an error is returned.
func (d *Door) Open(p *Player) error {
	if d.IsOpen() {
		return apperrors.ErrDoorAlreadyOpen
	}
	if p.Points < OpenDoorCost {
		return apperrors.ErrNotEnoughPoints
	}
	p.RemovePoints(OpenDoorCost)
	id := p.ID
	d.OpenedBy = &id
	return nil
}

// Reset closes the door. Capacity is kept until the next roll.
func (d *Door) Reset() {
	d.OpenedBy = nil
}

// RolledFor reports whether the capacity was rolled for turn.
func (d *Door) RolledFor(turn int) bool {
	return d.CapacityTurn == turn
}

// CapacityFor returns the capacity valid for turn, or 0 when it is stale.
func (d *Door) CapacityFor(turn int) int {
	if !d.RolledFor(turn) {
		return 0
	}
	return d.Capacity
}
