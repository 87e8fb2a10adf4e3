package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "created_at"}

func TestNewPostgresUserStore(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)
	require.NotNil(t, userStore)
	var _ store.UserStore = userStore
}

func TestPostgresUserStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)
	createdAt := time.Date(2025, 5, 10, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "a@x.com", "$2a$hash").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "alice", "a@x.com", "$2a$hash", createdAt))

	user, err := userStore.Create(context.Background(), "alice", "a@x.com", "$2a$hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, createdAt, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_Create_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err = userStore.Create(context.Background(), "alice", "a@x.com", "hash")
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_Create_StorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("disk full"))

	_, err = userStore.Create(context.Background(), "alice", "a@x.com", "hash")
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.NotErrorIs(t, err, store.ErrConflict)
}

func TestPostgresUserStore_FindByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").
		WithArgs("nonexistent").
		WillReturnError(sql.ErrNoRows)

	user, err := userStore.FindByUsername(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_FindByUsername_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)
	createdAt := time.Date(2025, 5, 10, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "admin", "admin@x.com", "hash", createdAt))

	user, err := userStore.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)
	createdAt := time.Date(2025, 5, 10, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(3, "bob", "b@x.com", "hash", createdAt))

	user, err := userStore.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_FindByID_StorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userStore := NewPostgresUserStore(db)

	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(errors.New("timeout"))

	_, err = userStore.FindByID(context.Background(), 3)
	assert.ErrorIs(t, err, store.ErrStorage)
}
