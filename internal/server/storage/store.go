// Package storage persists whole session aggregates behind a compare-and-swap
// Update, with Redis, SQLite and in-memory adapters.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Cryborg/sugoroku/internal/game"
)

var (
	// ErrNotFound 会话不存在
	ErrNotFound = errors.New("storage: session not found")
	// ErrConflict 并发写入冲突，调用方可以重试
	ErrConflict = errors.New("storage: concurrent update conflict")
	// ErrExists 会话已存在
	ErrExists = errors.New("storage: session already exists")
)

// MutateFunc changes a freshly loaded state. Returning an error aborts the
// update and nothing is written.
type MutateFunc func(st *game.State) error

// Store is the persistence port of the session manager.
type Store interface {
	// Create stores a new session at version 1 and indexes its players.
	Create(ctx context.Context, st *game.State) error
	// Load returns the current state or ErrNotFound.
	Load(ctx context.Context, sessionID string) (*game.State, error)
	// Update applies fn to the current state and commits the result only if
	// nobody else committed in between (ErrConflict otherwise). The returned
	// state is the committed one.
	Update(ctx context.Context, sessionID string, fn MutateFunc) (*game.State, error)
	// Delete removes a session and its player index.
	Delete(ctx context.Context, sessionID string) error
	// SessionOf resolves the session a player belongs to.
	SessionOf(ctx context.Context, playerID string) (string, error)
	// ActiveSessions lists sessions that are not finished.
	ActiveSessions(ctx context.Context) ([]string, error)
	Close() error
}

// cloneState deep-copies a state through its JSON form.
func cloneState(st *game.State) (*game.State, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	var out game.State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &out, nil
}
