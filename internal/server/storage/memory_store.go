package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/Cryborg/sugoroku/internal/game"
)

// MemoryStore keeps sessions in process memory. Updates are serialized by a
// single lock, so they never conflict.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.State
	players  map[string]string
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*game.State),
		players:  make(map[string]string),
	}
}

func (ms *MemoryStore) Create(ctx context.Context, st *game.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, err := cloneState(st)
	if err != nil {
		return err
	}
	stored.Version = 1

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.sessions[st.Session.ID]; ok {
		return ErrExists
	}
	ms.sessions[st.Session.ID] = stored
	for _, p := range st.Players {
		ms.players[p.ID] = st.Session.ID
	}
	st.Version = 1
	return nil
}

func (ms *MemoryStore) Load(ctx context.Context, sessionID string) (*game.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	st, ok := ms.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneState(st)
}

func (ms *MemoryStore) Update(ctx context.Context, sessionID string, fn MutateFunc) (*game.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	current, ok := ms.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	work, err := cloneState(current)
	if err != nil {
		return nil, err
	}
	if err := fn(work); err != nil {
		return nil, err
	}
	work.Version = current.Version + 1

	stored, err := cloneState(work)
	if err != nil {
		return nil, err
	}
	ms.sessions[sessionID] = stored
	return work, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	st, ok := ms.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	for _, p := range st.Players {
		delete(ms.players, p.ID)
	}
	delete(ms.sessions, sessionID)
	return nil
}

func (ms *MemoryStore) SessionOf(ctx context.Context, playerID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	id, ok := ms.players[playerID]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (ms *MemoryStore) ActiveSessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var ids []string
	for id, st := range ms.sessions {
		if st.Session.Status != game.StatusFinished {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
