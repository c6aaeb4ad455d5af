package game

// ApplyCost charges the room cost to every alive or blocked occupant and
// returns how many were charged.
func (r *Room) ApplyCost(occupants []*Player) int {
	if r.PointsCost <= 0 {
		return 0
	}
	charged := 0
	for _, p := range occupants {
		if p.CurrentRoomID != r.ID || !p.IsActive() {
			continue
		}
		p.RemovePoints(r.PointsCost)
		charged++
	}
	return charged
}

// MarkVisited flips the visited flag. It returns true the first time only.
func (r *Room) MarkVisited() bool {
	if r.IsVisited {
		return false
	}
	r.IsVisited = true
	return true
}

// IsCorner reports whether the room sits in a grid corner.
func (r *Room) IsCorner() bool {
	return (r.X == 0 || r.X == GridSize-1) && (r.Y == 0 || r.Y == GridSize-1)
}
