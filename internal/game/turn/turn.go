// Package turn implements the turn timer and the turn boundary.
package turn

import (
	"time"

	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/game/arbiter"
)

// Timer returns the per-turn time budget of a session.
func Timer(sess *game.Session) time.Duration {
	if sess.TurnTimerSeconds <= 0 {
		return game.DefaultTurnTimer * time.Second
	}
	return time.Duration(sess.TurnTimerSeconds) * time.Second
}

// RemainingTime returns max(0, timer - elapsed). A turn that never started
// has the full timer left.
func RemainingTime(sess *game.Session, now time.Time) time.Duration {
	timer := Timer(sess)
	if sess.TurnStartedAt == nil {
		return timer
	}
	remaining := timer - now.Sub(*sess.TurnStartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired reports whether the current turn ran out of time.
func IsExpired(sess *game.Session, now time.Time) bool {
	return RemainingTime(sess, now) == 0
}

// Advance closes the current turn: every occupied room becomes visited, the
// turn counter moves on (or the session finishes after the last turn), all
// doors close and the doors of occupied rooms are rolled for the new turn.
// It returns true when the session finished.
func Advance(s *game.State, now time.Time, rng game.Rand) bool {
	for _, p := range s.Players {
		if r := s.Room(p.CurrentRoomID); r != nil {
			r.MarkVisited()
		}
	}

	finished := s.Session.CurrentTurn >= s.Session.MaxTurns
	if finished {
		s.Session.Status = game.StatusFinished
	} else {
		s.Session.CurrentTurn++
		started := now
		s.Session.TurnStartedAt = &started
	}

	for _, d := range s.Doors {
		d.Reset()
	}

	if !finished {
		arbiter.RollOccupied(s, s.Session.CurrentTurn, rng)
	}
	return finished
}

// Move is one door crossing settled at the turn boundary.
type Move struct {
	PlayerID string `json:"player_id"`
	DoorID   int    `json:"door_id"`
	From     int    `json:"from_room_id"`
	To       int    `json:"to_room_id"`
}

// Report summarizes a turn boundary.
type Report struct {
	ResolvedTurn int      `json:"resolved_turn"`
	Turn         int      `json:"turn"`
	Finished     bool     `json:"finished"`
	Moves        []Move   `json:"moves,omitempty"`
	Blocked      []string `json:"blocked,omitempty"`
	Died         []string `json:"died,omitempty"`
}

// Resolve runs a full turn boundary: batch arbitration for batch sessions,
// room costs for every resident, then Advance.
func Resolve(s *game.State, now time.Time, rng game.Rand) Report {
	resolved := s.Session.CurrentTurn
	report := Report{ResolvedTurn: resolved}

	if s.Session.Resolution == game.ResolutionBatch {
		for _, d := range s.Doors {
			if len(s.ChoicesFor(d.ID, resolved)) == 0 {
				continue
			}
			res := arbiter.ResolveBatch(s, d, resolved, rng)
			for _, p := range res.Passed {
				report.Moves = append(report.Moves, Move{PlayerID: p.ID, DoorID: d.ID, From: d.RoomID, To: p.CurrentRoomID})
			}
			for _, p := range res.Blocked {
				report.Blocked = append(report.Blocked, p.ID)
			}
		}
	}

	alive := make(map[string]bool)
	for _, p := range s.Players {
		alive[p.ID] = p.IsActive()
	}
	for _, r := range s.Rooms {
		r.ApplyCost(s.Occupants(r.ID))
	}
	for _, p := range s.Players {
		if alive[p.ID] && p.Status == game.PlayerDead {
			report.Died = append(report.Died, p.ID)
		}
	}

	report.Finished = Advance(s, now, rng)
	report.Turn = s.Session.CurrentTurn
	return report
}
