package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/game/arbiter"
)

// ReasonDoorFull is reported when an immediate move loses arbitration.
const ReasonDoorFull = "door is full"

// actionFunc performs one player action on a loaded state.
type actionFunc func(st *game.State, p *game.Player, res *MoveResult) error

// playerAction loads the player's session, checks it is in play and runs fn.
// The result is rebuilt on every attempt.
func (m *Manager) playerAction(ctx context.Context, playerID, action string, fn actionFunc) (*MoveResult, error) {
	sessionID, err := m.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var res *MoveResult
	_, err = m.update(ctx, sessionID, func(st *game.State) error {
		if st.Session.Status != game.StatusPlaying {
			return apperrors.ErrSessionNotPlaying
		}
		p := st.Player(playerID)
		if p == nil {
			return apperrors.ErrPlayerNotFound
		}
		res = &MoveResult{PlayerID: p.ID, Action: action, FromRoomID: p.CurrentRoomID}
		if err := fn(st, p, res); err != nil {
			return err
		}
		res.ToRoomID = p.CurrentRoomID
		res.Points = p.Points
		res.Happiness = p.Happiness
		res.Status = p.Status
		if end := evaluateEnd(st); end.Ended {
			res.End = end
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session", sessionID).
		Str("player", playerID).
		Str("action", action).
		Bool("moved", res.Moved).
		Bool("blocked", res.Blocked).
		Msg("player action")
	return res, nil
}

// doorInRoom checks the player may act on a door of their room this turn.
func (m *Manager) doorInRoom(st *game.State, p *game.Player, doorID int) (*game.Door, error) {
	if !p.IsAlive() {
		return nil, apperrors.ErrPlayerCannotAct
	}
	d := st.Door(doorID)
	if d == nil {
		return nil, apperrors.ErrDoorNotFound
	}
	if d.RoomID != p.CurrentRoomID {
		return nil, apperrors.ErrDoorNotInRoom
	}
	if st.Session.Resolution == game.ResolutionImmediate {
		turn := st.Session.CurrentTurn
		if c := st.Choice(p.ID, turn); c != nil && c.Moves >= st.MoveAllowance(p.ID, turn) {
			return nil, apperrors.ErrAlreadyMoved
		}
	}
	return d, nil
}

// OpenDoor spends one point to open a door of the player's room and commits
// the player to it.
func (m *Manager) OpenDoor(ctx context.Context, playerID string, doorID int) (*MoveResult, error) {
	return m.playerAction(ctx, playerID, ActionOpen, func(st *game.State, p *game.Player, res *MoveResult) error {
		d, err := m.doorInRoom(st, p, doorID)
		if err != nil {
			return err
		}
		if err := d.Open(p); err != nil {
			return err
		}
		res.DoorID = &d.ID
		if !p.IsAlive() {
			// the last point went into the door
			st.RecordChoice(p.ID, st.Session.CurrentTurn, &d.ID)
			return nil
		}
		m.commit(st, p, d, res)
		return nil
	})
}

// ChooseDoor commits the player to a door that is already open.
func (m *Manager) ChooseDoor(ctx context.Context, playerID string, doorID int) (*MoveResult, error) {
	return m.playerAction(ctx, playerID, ActionChoose, func(st *game.State, p *game.Player, res *MoveResult) error {
		d, err := m.doorInRoom(st, p, doorID)
		if err != nil {
			return err
		}
		if !d.IsOpen() {
			return apperrors.ErrDoorNotOpen
		}
		res.DoorID = &d.ID
		m.commit(st, p, d, res)
		return nil
	})
}

// commit records the choice and, in immediate sessions, settles the move.
func (m *Manager) commit(st *game.State, p *game.Player, d *game.Door, res *MoveResult) {
	turn := st.Session.CurrentTurn
	choice := st.RecordChoice(p.ID, turn, &d.ID)
	if st.Session.Resolution == game.ResolutionBatch {
		res.Pending = true
		return
	}

	out := arbiter.ResolveImmediate(st, p, d, turn)
	if !out.Passed {
		res.Blocked = true
		res.Reason = ReasonDoorFull
		return
	}
	choice.Moves++
	res.Moved = true
	arbiter.EnsureRolled(st, out.Target, turn, m.opts.Rand)
}

// Stay records that the player does not move this turn. Blocked players may
// stay.
func (m *Manager) Stay(ctx context.Context, playerID string) (*MoveResult, error) {
	return m.playerAction(ctx, playerID, ActionStay, func(st *game.State, p *game.Player, res *MoveResult) error {
		if !p.IsActive() {
			return apperrors.ErrPlayerCannotAct
		}
		// 已经穿过门的玩家仍占用该门的容量
		if c := st.Choice(p.ID, st.Session.CurrentTurn); c != nil && c.Moves > 0 {
			return apperrors.ErrAlreadyMoved
		}
		st.RecordChoice(p.ID, st.Session.CurrentTurn, nil)
		return nil
	})
}

// FreePlayer lets an alive player release a blocked player of the same room.
func (m *Manager) FreePlayer(ctx context.Context, liberatorID, blockedID string) (*MoveResult, error) {
	return m.playerAction(ctx, liberatorID, ActionFree, func(st *game.State, p *game.Player, res *MoveResult) error {
		target := st.Player(blockedID)
		if target == nil {
			return apperrors.ErrPlayerNotFound
		}
		if !p.IsAlive() {
			return apperrors.ErrPlayerCannotAct
		}
		if target.Status != game.PlayerBlocked {
			return apperrors.ErrPlayerNotBlocked
		}
		if target.CurrentRoomID != p.CurrentRoomID {
			return apperrors.ErrNotSameRoom
		}
		target.Liberate()
		return nil
	})
}

// GiveUp lets a player quit once somebody has reached the exit. The player
// dies.
func (m *Manager) GiveUp(ctx context.Context, playerID string) (*MoveResult, error) {
	return m.playerAction(ctx, playerID, ActionGiveUp, func(st *game.State, p *game.Player, res *MoveResult) error {
		if !p.IsActive() {
			return apperrors.ErrPlayerCannotAct
		}
		_, inExit, _ := st.Partition()
		if len(inExit) == 0 {
			return apperrors.ErrNobodyAtExit
		}
		p.Kill()
		return nil
	})
}
