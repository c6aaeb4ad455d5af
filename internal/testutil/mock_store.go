//go:build !production

// Package testutil holds testify mocks shared by package tests.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/server/storage"
)

// MockStore 实现 storage.Store 的 mock
type MockStore struct {
	mock.Mock
}

var _ storage.Store = (*MockStore)(nil)

func (m *MockStore) Create(ctx context.Context, st *game.State) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*game.State, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*game.State), args.Error(1)
}

// Update runs fn against the state returned by the mock's first value when
// one is configured, so callers observe their mutation.
func (m *MockStore) Update(ctx context.Context, sessionID string, fn storage.MutateFunc) (*game.State, error) {
	args := m.Called(ctx, sessionID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	st := args.Get(0).(*game.State)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	st.Version++
	return st, nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockStore) SessionOf(ctx context.Context, playerID string) (string, error) {
	args := m.Called(ctx, playerID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ActiveSessions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}
