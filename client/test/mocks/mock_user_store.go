package mocks

import (
	"context"
	"time"

	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/types"
)

// MockUserStore is a mock implementation of store.UserStore for testing.
type MockUserStore struct {
	CreateFunc         func(ctx context.Context, username, email, passwordHash string) (*types.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*types.User, error)
	FindByIDFunc       func(ctx context.Context, id int64) (*types.User, error)
}

func (m *MockUserStore) Create(ctx context.Context, username, email, passwordHash string) (*types.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, username, email, passwordHash)
	}
	return &types.User{ID: 1, Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}, nil
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, store.ErrNotFound
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (*types.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}
