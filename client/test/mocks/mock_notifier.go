package mocks

import (
	"context"
	"sync"

	"github.com/RezaEskandarii/cronfire/types"
)

// MockNotifier is a mock implementation of notifier.Notifier that records every notification.
type MockNotifier struct {
	NotifyFunc func(ctx context.Context, n types.Notification) error
	CloseFunc  func() error

	mu   sync.Mutex
	sent []types.Notification
}

func (m *MockNotifier) Notify(ctx context.Context, n types.Notification) error {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, n)
	}
	return nil
}

func (m *MockNotifier) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Sent returns a copy of the recorded notifications.
func (m *MockNotifier) Sent() []types.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Notification(nil), m.sent...)
}
