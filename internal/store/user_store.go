package store

import (
	"context"

	"github.com/RezaEskandarii/cronfire/types"
)

// UserStore handles user-related database operations.
type UserStore interface {
	// Create inserts a user with an already hashed password.
	Create(ctx context.Context, username, email, passwordHash string) (*types.User, error)

	// FindByUsername looks up a user matching the given username.
	FindByUsername(ctx context.Context, username string) (*types.User, error)

	// FindByID looks up a user by primary key.
	FindByID(ctx context.Context, id int64) (*types.User, error)
}
