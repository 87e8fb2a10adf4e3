package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/types"
)

const userColumns = `id, username, email, password_hash, created_at`

type postgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore creates a new UserStore with a DB connection
func NewPostgresUserStore(db *sql.DB) store.UserStore {
	return &postgresUserStore{db: db}
}

func (r *postgresUserStore) Create(ctx context.Context, username, email, passwordHash string) (*types.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username, email, passwordHash))
	if err != nil {
		if sqlState(err) == uniqueViolation {
			return nil, fmt.Errorf("%w: username or email already taken", store.ErrConflict)
		}
		return nil, fmt.Errorf("%w: failed to insert user: %w", store.ErrStorage, err)
	}
	return user, nil
}

func (r *postgresUserStore) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.findOne(ctx, query, username)
}

func (r *postgresUserStore) FindByID(ctx context.Context, id int64) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresUserStore) findOne(ctx context.Context, query string, arg any) (*types.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch user: %w", store.ErrStorage, err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*types.User, error) {
	var user types.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
