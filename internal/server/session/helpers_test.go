package session

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/server/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	m     *Manager
	store storage.Store
	clock *fakeClock
}

func newTestEnv(t *testing.T, resolution game.Resolution) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	clock := newFakeClock()
	m := NewManager(store, Options{
		TurnTimer:  600 * time.Second,
		MaxTurns:   15,
		Resolution: resolution,
		Now:        clock.Now,
		Rand:       rand.New(rand.NewPCG(7, 8)),
	})
	return &testEnv{m: m, store: store, clock: clock}
}

// started creates and starts a session with the given roster and returns
// its id and the player ids in roster order.
func (e *testEnv) started(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	if len(names) == 0 {
		names = []string{"Ann", "Ben", "Cid"}
	}
	ctx := context.Background()
	id, err := e.m.CreateSession(ctx, names, CreateOptions{})
	require.NoError(t, err)
	snap, err := e.m.StartSession(ctx, id)
	require.NoError(t, err)

	ids := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		ids = append(ids, p.ID)
	}
	return id, ids
}

func (e *testEnv) state(t *testing.T, id string) *game.State {
	t.Helper()
	st, err := e.store.Load(context.Background(), id)
	require.NoError(t, err)
	return st
}

func (e *testEnv) mutate(t *testing.T, id string, fn func(st *game.State)) {
	t.Helper()
	_, err := e.store.Update(context.Background(), id, func(st *game.State) error {
		fn(st)
		return nil
	})
	require.NoError(t, err)
}

// startDoor returns the first door of the start room with the given
// capacity for the current turn.
func (e *testEnv) startDoor(t *testing.T, id string, capacity int) *game.Door {
	t.Helper()
	var door *game.Door
	e.mutate(t, id, func(st *game.State) {
		door = st.DoorsOf(st.StartRoom().ID)[0]
		door.Capacity = capacity
		door.CapacityTurn = st.Session.CurrentTurn
	})
	return door
}

// conflictStore fails the first n updates with ErrConflict.
type conflictStore struct {
	storage.Store
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (s *conflictStore) Update(ctx context.Context, id string, fn storage.MutateFunc) (*game.State, error) {
	s.mu.Lock()
	s.calls++
	fail := s.conflicts > 0
	if fail {
		s.conflicts--
	}
	s.mu.Unlock()
	if fail {
		return nil, storage.ErrConflict
	}
	return s.Store.Update(ctx, id, fn)
}
