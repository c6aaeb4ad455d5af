package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/game/turn"
)

// advanceReason reports why the current turn should end, or "".
func advanceReason(st *game.State, now time.Time) string {
	if st.Session.Status != game.StatusPlaying {
		return AdvanceNotNeeded
	}
	if turn.IsExpired(&st.Session, now) {
		return AdvanceTimeout
	}
	current := st.Session.CurrentTurn
	waiting := 0
	for _, p := range st.Players {
		if p.IsActive() && st.Choice(p.ID, current) == nil {
			waiting++
		}
	}
	if waiting == 0 {
		return AdvanceAllActed
	}
	return AdvanceNotNeeded
}

// CheckAndAdvance resolves the current turn when its timer ran out or every
// active player has acted. Calling it again for the same turn does nothing.
func (m *Manager) CheckAndAdvance(ctx context.Context, sessionID string) (*AdvanceResult, error) {
	st, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if advanceReason(st, m.opts.Now()) == AdvanceNotNeeded {
		return &AdvanceResult{RemainingTime: int(m.remaining(&st.Session) / time.Second)}, nil
	}

	res, err := m.advance(ctx, sessionID, func(st *game.State) string {
		return advanceReason(st, m.opts.Now())
	})
	if errors.Is(err, errNoChange) || errors.Is(err, apperrors.ErrSessionNotPlaying) {
		// somebody else resolved the turn first
		return m.idle(ctx, sessionID)
	}
	return res, err
}

// ForceAdvance resolves the current turn now.
func (m *Manager) ForceAdvance(ctx context.Context, sessionID string) (*AdvanceResult, error) {
	return m.advance(ctx, sessionID, func(st *game.State) string {
		if st.Session.Status != game.StatusPlaying {
			return AdvanceNotNeeded
		}
		return AdvanceForced
	})
}

func (m *Manager) idle(ctx context.Context, sessionID string) (*AdvanceResult, error) {
	st, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &AdvanceResult{RemainingTime: int(m.remaining(&st.Session) / time.Second)}, nil
}

func (m *Manager) advance(ctx context.Context, sessionID string, reasonOf func(*game.State) string) (*AdvanceResult, error) {
	var res *AdvanceResult
	st, err := m.update(ctx, sessionID, func(st *game.State) error {
		reason := reasonOf(st)
		if reason == AdvanceNotNeeded {
			if st.Session.Status != game.StatusPlaying {
				return apperrors.ErrSessionNotPlaying
			}
			return errNoChange
		}
		report := turn.Resolve(st, m.opts.Now(), m.opts.Rand)
		res = &AdvanceResult{Advanced: true, Reason: reason, Report: &report}
		if end := evaluateEnd(st); end.Ended {
			res.End = end
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.RemainingTime = int(m.remaining(&st.Session) / time.Second)

	ev := log.Info().
		Str("session", sessionID).
		Str("reason", res.Reason).
		Int("turn", res.Report.Turn).
		Int("moves", len(res.Report.Moves)).
		Int("died", len(res.Report.Died))
	if res.End != nil {
		ev = ev.Str("end", res.End.Reason)
	}
	ev.Msg("turn resolved")
	return res, nil
}

// EvaluateEndConditions checks whether the session is over, marks the
// players standing in the exit as winners and finishes the session when an
// end condition holds.
func (m *Manager) EvaluateEndConditions(ctx context.Context, sessionID string) (*EndResult, error) {
	var res *EndResult
	_, err := m.update(ctx, sessionID, func(st *game.State) error {
		if st.Session.Status == game.StatusWaiting {
			return apperrors.ErrSessionNotPlaying
		}
		res = evaluateEnd(st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// evaluateEnd partitions the players, promotes those in the exit to winners
// and finishes the session on victory, total loss or timeout.
func evaluateEnd(st *game.State) *EndResult {
	dead, inExit, alive := st.Partition()
	for _, p := range inExit {
		p.Win()
	}
	game.SortByHappiness(inExit)

	res := &EndResult{
		Winners: summarize(inExit),
		Dead:    summarize(dead),
		Alive:   summarize(alive),
	}

	timedOut := st.Session.Status == game.StatusFinished || st.Session.CurrentTurn >= st.Session.MaxTurns
	switch {
	case len(inExit) > 0 && len(alive) == 0:
		res.Reason = EndVictory
	case len(inExit) == 0 && len(alive) == 0:
		res.Reason = EndAllDead
	case len(alive) > 0 && timedOut:
		res.Reason = EndTimeout
	}

	if res.Reason != "" {
		res.Ended = true
		st.Session.Status = game.StatusFinished
	}
	return res
}
