package game

// IsAlive reports whether the player can still act freely.
func (p *Player) IsAlive() bool {
	return p.Status == PlayerAlive
}

// IsActive reports whether the player is still in the race (alive or blocked).
func (p *Player) IsActive() bool {
	return p.Status == PlayerAlive || p.Status == PlayerBlocked
}

// IsTerminal reports whether the player is dead or has won.
func (p *Player) IsTerminal() bool {
	return p.Status == PlayerDead || p.Status == PlayerWinner
}

// RemovePoints deducts n points, never below zero. Reaching zero kills the
// player, even while blocked or mid-move.
func (p *Player) RemovePoints(n int) {
	if n <= 0 || p.IsTerminal() {
		return
	}
	p.Points -= n
	if p.Points <= 0 {
		p.Points = 0
		p.Status = PlayerDead
	}
}

// AddPoints credits n points, capped at limit.
func (p *Player) AddPoints(n, limit int) {
	if n <= 0 || p.IsTerminal() {
		return
	}
	p.Points = min(p.Points+n, limit)
}

// RevokePoints removes points granted by a bonus card that is being
// cancelled. Unlike RemovePoints it applies to any status and does not kill.
func (p *Player) RevokePoints(n int) {
	p.Points = max(0, p.Points-n)
}

// AddHappiness records a happiness change in the signed total and in the
// positive or negative running total.
func (p *Player) AddHappiness(delta int) {
	p.Happiness += delta
	switch {
	case delta > 0:
		p.HappinessPositive += delta
	case delta < 0:
		p.HappinessNegative += -delta
	}
}

// MoveTo places the player in a room.
func (p *Player) MoveTo(roomID int) {
	p.CurrentRoomID = roomID
}

// Block marks an alive player as stuck behind a full door.
func (p *Player) Block() {
	if p.Status == PlayerAlive {
		p.Status = PlayerBlocked
	}
}

// Liberate returns a blocked player to the race.
func (p *Player) Liberate() {
	if p.Status == PlayerBlocked {
		p.Status = PlayerAlive
	}
}

// Win marks the player as having escaped.
func (p *Player) Win() {
	if p.IsActive() {
		p.Status = PlayerWinner
	}
}

// Kill marks the player as dead, e.g. after giving up.
func (p *Player) Kill() {
	if p.IsActive() {
		p.Status = PlayerDead
	}
}
