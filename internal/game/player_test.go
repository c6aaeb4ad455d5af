package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayer_RemovePointsKills(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "p1", Points: 3, Status: PlayerAlive}
	p.RemovePoints(2)
	assert.Equal(t, 1, p.Points)
	assert.Equal(t, PlayerAlive, p.Status)

	// overshoot clamps at zero and kills
	p.RemovePoints(5)
	assert.Equal(t, 0, p.Points)
	assert.Equal(t, PlayerDead, p.Status)

	// dead players are frozen
	p.RemovePoints(1)
	assert.Equal(t, 0, p.Points)
}

func TestPlayer_RemovePointsKillsBlocked(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "p1", Points: 2, Status: PlayerBlocked}
	p.RemovePoints(2)
	assert.Equal(t, PlayerDead, p.Status)
}

func TestPlayer_AddPointsClamped(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "p1", Points: 18, Status: PlayerAlive}
	p.AddPoints(5, 20)
	assert.Equal(t, 20, p.Points)

	p.AddPoints(-3, 20)
	assert.Equal(t, 20, p.Points)

	w := &Player{ID: "p2", Points: 4, Status: PlayerWinner}
	w.AddPoints(3, 20)
	assert.Equal(t, 4, w.Points)
}

func TestPlayer_RevokePoints(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "p1", Points: 2, Status: PlayerWinner}
	p.RevokePoints(3)
	assert.Equal(t, 0, p.Points)
	assert.Equal(t, PlayerWinner, p.Status)
}

func TestPlayer_AddHappiness(t *testing.T) {
	t.Parallel()

	p := &Player{}
	p.AddHappiness(4)
	p.AddHappiness(-3)
	p.AddHappiness(0)
	p.AddHappiness(-2)

	assert.Equal(t, -1, p.Happiness)
	assert.Equal(t, 4, p.HappinessPositive)
	assert.Equal(t, 5, p.HappinessNegative)
	assert.Equal(t, p.Happiness, p.HappinessPositive-p.HappinessNegative)
}

func TestPlayer_Transitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		from   PlayerStatus
		apply  func(*Player)
		expect PlayerStatus
	}{
		{"alive blocks", PlayerAlive, (*Player).Block, PlayerBlocked},
		{"blocked liberated", PlayerBlocked, (*Player).Liberate, PlayerAlive},
		{"alive liberate is no-op", PlayerAlive, (*Player).Liberate, PlayerAlive},
		{"alive wins", PlayerAlive, (*Player).Win, PlayerWinner},
		{"blocked gives up", PlayerBlocked, (*Player).Kill, PlayerDead},
		{"dead stays dead", PlayerDead, (*Player).Win, PlayerDead},
		{"winner cannot block", PlayerWinner, (*Player).Block, PlayerWinner},
		{"dead cannot be liberated", PlayerDead, (*Player).Liberate, PlayerDead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &Player{Points: 5, Status: tt.from}
			tt.apply(p)
			assert.Equal(t, tt.expect, p.Status)
		})
	}
}
