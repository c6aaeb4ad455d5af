//go:build !production

package session

import (
	"github.com/stretchr/testify/mock"
)

// MockNotifier 会话变更通知 mock
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SessionChanged(sessionID string) {
	m.Called(sessionID)
}
