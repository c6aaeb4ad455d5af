package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
)

func TestOpenDoor_ImmediateMove(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 2)
	target := env.state(t, id).Target(door)

	res, err := env.m.OpenDoor(ctx, players[0], door.ID)
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.False(t, res.Blocked)
	assert.Equal(t, target.ID, res.ToRoomID)
	assert.Equal(t, 19, res.Points)
	assert.Equal(t, door.HappinessModifier, res.Happiness)

	st := env.state(t, id)
	assert.True(t, st.Door(door.ID).IsOpen())
	assert.Equal(t, players[0], *st.Door(door.ID).OpenedBy)
	require.NotNil(t, st.Choice(players[0], 1))
	// the room reached mid-turn got its doors rolled
	for _, d := range st.DoorsOf(target.ID) {
		assert.True(t, d.RolledFor(1))
	}

	_, err = env.m.OpenDoor(ctx, players[1], door.ID)
	assert.ErrorIs(t, err, apperrors.ErrDoorAlreadyOpen)

	// a moved player cannot move again this turn
	next := st.DoorsOf(target.ID)[0]
	_, err = env.m.OpenDoor(ctx, players[0], next.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMoved)
}

func TestOpenDoor_Preconditions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)
	st := env.state(t, id)

	var foreign *game.Door
	for _, d := range st.Doors {
		if d.RoomID != st.StartRoom().ID {
			foreign = d
			break
		}
	}
	_, err := env.m.OpenDoor(ctx, players[0], foreign.ID)
	assert.ErrorIs(t, err, apperrors.ErrDoorNotInRoom)

	_, err = env.m.OpenDoor(ctx, players[0], 9999)
	assert.ErrorIs(t, err, apperrors.ErrDoorNotFound)

	_, err = env.m.OpenDoor(ctx, "ghost", foreign.ID)
	assert.ErrorIs(t, err, apperrors.ErrPlayerNotFound)
}

func TestOpenDoor_NotEnoughPointsIsAtomic(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 3)
	// a zero balance that was not yet observed as dead
	env.mutate(t, id, func(st *game.State) { st.Player(players[0]).Points = 0 })
	before := env.state(t, id)

	_, err := env.m.OpenDoor(ctx, players[0], door.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotEnoughPoints)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientResource))

	after := env.state(t, id)
	assert.Equal(t, before.Version, after.Version)
	assert.False(t, after.Door(door.ID).IsOpen())
	assert.Nil(t, after.Choice(players[0], 1))
}

func TestOpenDoor_LastPointKills(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 3)
	env.mutate(t, id, func(st *game.State) { st.Player(players[0]).Points = 1 })

	res, err := env.m.OpenDoor(ctx, players[0], door.ID)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, 0, res.Points)
	assert.Equal(t, game.PlayerDead, res.Status)
	assert.Equal(t, res.FromRoomID, res.ToRoomID)

	// the door stays open for the others
	res, err = env.m.ChooseDoor(ctx, players[1], door.ID)
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, 20, res.Points)
}

func TestChooseDoor_ImmediateFirstComeFirstServed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 1)

	_, err := env.m.ChooseDoor(ctx, players[1], door.ID)
	assert.ErrorIs(t, err, apperrors.ErrDoorNotOpen)

	res, err := env.m.OpenDoor(ctx, players[0], door.ID)
	require.NoError(t, err)
	require.True(t, res.Moved)

	res, err = env.m.ChooseDoor(ctx, players[1], door.ID)
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Equal(t, ReasonDoorFull, res.Reason)
	assert.Equal(t, game.PlayerBlocked, res.Status)
	assert.Equal(t, res.FromRoomID, res.ToRoomID)

	// blocked players can only stay
	_, err = env.m.ChooseDoor(ctx, players[1], door.ID)
	assert.ErrorIs(t, err, apperrors.ErrPlayerCannotAct)
	res, err = env.m.Stay(ctx, players[1])
	require.NoError(t, err)
	assert.Equal(t, game.PlayerBlocked, res.Status)
	assert.Nil(t, env.state(t, id).Choice(players[1], 1).DoorID)
}

func TestStay_AfterCrossingKeepsDoorFull(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 1)
	target := env.state(t, id).Target(door)

	res, err := env.m.OpenDoor(ctx, players[0], door.ID)
	require.NoError(t, err)
	require.True(t, res.Moved)

	_, err = env.m.Stay(ctx, players[0])
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMoved)
	assert.Equal(t, door.ID, *env.state(t, id).Choice(players[0], 1).DoorID)

	res, err = env.m.ChooseDoor(ctx, players[1], door.ID)
	require.NoError(t, err)
	assert.True(t, res.Blocked)

	inTarget := 0
	for _, p := range env.state(t, id).Players {
		if p.CurrentRoomID == target.ID {
			inTarget++
		}
	}
	assert.Equal(t, 1, inTarget)
}

func TestFreePlayer(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 1)

	_, err := env.m.FreePlayer(ctx, players[2], players[1])
	assert.ErrorIs(t, err, apperrors.ErrPlayerNotBlocked)

	_, err = env.m.OpenDoor(ctx, players[0], door.ID)
	require.NoError(t, err)
	_, err = env.m.ChooseDoor(ctx, players[1], door.ID)
	require.NoError(t, err)

	// the player who went through is no longer in the same room
	_, err = env.m.FreePlayer(ctx, players[0], players[1])
	assert.ErrorIs(t, err, apperrors.ErrNotSameRoom)

	before := env.state(t, id).Player(players[1])
	res, err := env.m.FreePlayer(ctx, players[2], players[1])
	require.NoError(t, err)
	assert.Equal(t, 20, res.Points)

	after := env.state(t, id).Player(players[1])
	assert.Equal(t, game.PlayerAlive, after.Status)
	assert.Equal(t, before.CurrentRoomID, after.CurrentRoomID)
	assert.Equal(t, before.Points, after.Points)

	_, err = env.m.FreePlayer(ctx, players[2], "ghost")
	assert.ErrorIs(t, err, apperrors.ErrPlayerNotFound)
}

func TestBatch_BlockedAndLiberated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionBatch)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 1)
	start := env.state(t, id).StartRoom()

	res, err := env.m.OpenDoor(ctx, players[0], door.ID)
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.False(t, res.Moved)
	assert.Equal(t, start.ID, res.ToRoomID)

	res, err = env.m.ChooseDoor(ctx, players[1], door.ID)
	require.NoError(t, err)
	assert.True(t, res.Pending)

	_, err = env.m.Stay(ctx, players[2])
	require.NoError(t, err)

	adv, err := env.m.CheckAndAdvance(ctx, id)
	require.NoError(t, err)
	require.True(t, adv.Advanced)
	assert.Equal(t, AdvanceAllActed, adv.Reason)
	assert.Len(t, adv.Report.Moves, 1)
	require.Len(t, adv.Report.Blocked, 1)

	blocked := adv.Report.Blocked[0]
	st := env.state(t, id)
	assert.Equal(t, game.PlayerBlocked, st.Player(blocked).Status)
	assert.Equal(t, start.ID, st.Player(blocked).CurrentRoomID)

	_, err = env.m.FreePlayer(ctx, players[2], blocked)
	require.NoError(t, err)
	st = env.state(t, id)
	assert.Equal(t, game.PlayerAlive, st.Player(blocked).Status)
	assert.Equal(t, start.ID, st.Player(blocked).CurrentRoomID)
}

func TestBatch_ChoiceCanBeChanged(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionBatch)
	ctx := context.Background()
	id, players := env.started(t)
	door := env.startDoor(t, id, 3)

	_, err := env.m.OpenDoor(ctx, players[0], door.ID)
	require.NoError(t, err)
	_, err = env.m.Stay(ctx, players[0])
	require.NoError(t, err)

	choices, err := env.m.Choices(ctx, id)
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Nil(t, choices[0].DoorID)
}

func TestGiveUp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)

	_, err := env.m.GiveUp(ctx, players[1])
	assert.ErrorIs(t, err, apperrors.ErrNobodyAtExit)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPreconditionFailed))

	env.mutate(t, id, func(st *game.State) {
		st.Player(players[0]).CurrentRoomID = st.ExitRoom().ID
	})

	res, err := env.m.GiveUp(ctx, players[1])
	require.NoError(t, err)
	assert.Equal(t, game.PlayerDead, res.Status)
	assert.Nil(t, res.End)

	st := env.state(t, id)
	assert.Equal(t, game.PlayerWinner, st.Player(players[0]).Status)
	assert.Equal(t, game.StatusPlaying, st.Session.Status)

	_, err = env.m.GiveUp(ctx, players[1])
	assert.ErrorIs(t, err, apperrors.ErrPlayerCannotAct)

	// the last one standing gives up: the winner takes it
	res, err = env.m.GiveUp(ctx, players[2])
	require.NoError(t, err)
	require.NotNil(t, res.End)
	assert.Equal(t, EndVictory, res.End.Reason)
}

func TestActions_RequirePlayingSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, err := env.m.CreateSession(ctx, []string{"Ann", "Ben", "Cid"}, CreateOptions{})
	require.NoError(t, err)
	snap, err := env.m.Snapshot(ctx, id, "")
	require.NoError(t, err)

	_, err = env.m.Stay(ctx, snap.Players[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotPlaying)
}
