package session

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/server/storage"
)

func TestCreateSession_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()

	tests := []struct {
		name   string
		roster []string
		opts   CreateOptions
		want   error
	}{
		{"too few players", []string{"a", "b"}, CreateOptions{}, apperrors.ErrInvalidRoster},
		{"too many players", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}, CreateOptions{}, apperrors.ErrInvalidRoster},
		{"blank name", []string{"a", " ", "c"}, CreateOptions{}, apperrors.ErrInvalidRoster},
		{"points too high", []string{"a", "b", "c"}, CreateOptions{StartingPoints: 100}, apperrors.ErrInvalidOptions},
		{"negative points", []string{"a", "b", "c"}, CreateOptions{StartingPoints: -1}, apperrors.ErrInvalidOptions},
		{"unknown resolution", []string{"a", "b", "c"}, CreateOptions{Resolution: "lottery"}, apperrors.ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := env.m.CreateSession(ctx, tt.roster, tt.opts)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, apperrors.IsKind(err, apperrors.KindPreconditionFailed))
		})
	}
}

func TestCreateSession_Snapshot(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	free := true
	id, err := env.m.CreateSession(ctx, []string{"Ann", "Ben", "Cid", "Dee"}, CreateOptions{StartingPoints: 12, FreeRooms: &free, Resolution: game.ResolutionBatch})
	require.NoError(t, err)

	snap, err := env.m.Snapshot(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, game.StatusWaiting, snap.Status)
	assert.Equal(t, game.ResolutionBatch, snap.Resolution)
	assert.Equal(t, 600, snap.RemainingTime)
	assert.Equal(t, 15, snap.MaxTurns)
	require.Len(t, snap.Players, 4)
	require.Len(t, snap.Rooms, 25)

	st := env.state(t, id)
	assert.True(t, st.Session.FreeRoomsEnabled)
	start := st.StartRoom()
	for _, p := range snap.Players {
		assert.Equal(t, 12, p.Points)
		assert.Equal(t, start.ID, p.CurrentRoomID)
		assert.Equal(t, game.PlayerAlive, p.Status)
	}
	for _, r := range snap.Rooms {
		if r.IsVisited {
			assert.NotNil(t, r.PointsCost)
		} else {
			assert.Nil(t, r.PointsCost, "room %d leaks its cost", r.ID)
		}
	}

	sessionOfFirst, err := env.store.SessionOf(ctx, snap.Players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, id, sessionOfFirst)
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, err := env.m.CreateSession(ctx, []string{"Ann", "Ben", "Cid"}, CreateOptions{})
	require.NoError(t, err)

	snap, err := env.m.StartSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPlaying, snap.Status)
	assert.Equal(t, 1, snap.Turn)

	st := env.state(t, id)
	require.NotNil(t, st.Session.TurnStartedAt)
	assert.True(t, st.Session.TurnStartedAt.Equal(env.clock.Now()))
	for _, d := range st.Doors {
		assert.Equal(t, d.RoomID == st.StartRoom().ID, d.RolledFor(1))
		assert.LessOrEqual(t, d.Capacity, 4)
	}

	_, err = env.m.StartSession(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotWaiting)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

	_, err = env.m.StartSession(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestSnapshot_RemainingTime(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	id, _ := env.started(t)

	env.clock.Advance(100 * time.Second)
	snap, err := env.m.Snapshot(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, 500, snap.RemainingTime)

	env.clock.Advance(time.Hour)
	snap, err = env.m.Snapshot(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.RemainingTime)
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, players := env.started(t)

	require.NoError(t, env.m.DeleteSession(ctx, id))
	_, err := env.m.Snapshot(ctx, id, "")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = env.m.Stay(ctx, players[0])
	assert.ErrorIs(t, err, apperrors.ErrPlayerNotFound)
	assert.ErrorIs(t, env.m.DeleteSession(ctx, id), apperrors.ErrSessionNotFound)
}

func TestManager_Notifies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, game.ResolutionImmediate)
	ctx := context.Background()
	id, err := env.m.CreateSession(ctx, []string{"Ann", "Ben", "Cid"}, CreateOptions{})
	require.NoError(t, err)

	notifier := &MockNotifier{}
	notifier.On("SessionChanged", id).Return().Twice()
	env.m.SetNotifier(notifier)

	_, err = env.m.StartSession(ctx, id)
	require.NoError(t, err)
	_, err = env.m.ForceAdvance(ctx, id)
	require.NoError(t, err)

	// failed operations don't notify
	_, err = env.m.StartSession(ctx, id)
	require.Error(t, err)

	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "SessionChanged", 2)
	notifier.AssertNotCalled(t, "SessionChanged", mock.MatchedBy(func(s string) bool { return s != id }))
}

func TestManager_RetriesConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &conflictStore{Store: storage.NewMemoryStore()}
	m := NewManager(store, Options{Rand: rand.New(rand.NewPCG(1, 1))})

	id, err := m.CreateSession(ctx, []string{"Ann", "Ben", "Cid"}, CreateOptions{})
	require.NoError(t, err)

	store.conflicts = 2
	_, err = m.StartSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)

	store.conflicts = 10
	_, err = m.ForceAdvance(ctx, id)
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Empty(t, apperrors.KindOf(err))
}
