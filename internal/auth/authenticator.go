package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RezaEskandarii/cronfire/internal/metrics"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// timingPassword is hashed once at startup so that logins for unknown users
// still pay for a full bcrypt comparison.
const timingPassword = "cronfire-timing-equalizer"

// Authenticator registers users and exchanges credentials for session tokens.
type Authenticator struct {
	users     store.UserStore
	tokens    *TokenAuthority
	cost      int
	dummyHash []byte
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

type AuthenticatorOption func(*Authenticator)

// WithBcryptCost sets the bcrypt work factor. Values outside bcrypt's range fall back to the default.
func WithBcryptCost(cost int) AuthenticatorOption {
	return func(a *Authenticator) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			a.cost = cost
		}
	}
}

func WithLogger(logger zerolog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) AuthenticatorOption {
	return func(a *Authenticator) {
		a.metrics = m
	}
}

func NewAuthenticator(users store.UserStore, tokens *TokenAuthority, opts ...AuthenticatorOption) (*Authenticator, error) {
	a := &Authenticator{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(timingPassword), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	a.dummyHash = dummy
	return a, nil
}

// Register creates a user with a bcrypt hash of password.
func (a *Authenticator) Register(ctx context.Context, username, email, password string) (*types.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		a.metrics.AuthAttempt("signup", "invalid_input")
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		a.metrics.AuthAttempt("signup", "invalid_input")
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	user, err := a.users.Create(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			a.metrics.AuthAttempt("signup", "conflict")
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		a.metrics.AuthAttempt("signup", "error")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	user.PasswordHash = ""
	a.metrics.AuthAttempt("signup", "success")
	a.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate verifies the credentials and returns a signed session.
//
// An unknown username yields an error matching both ErrInvalidCredentials and
// ErrNotFound after the same amount of bcrypt work as a wrong password, so
// callers that only surface ErrInvalidCredentials leak nothing.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Session, error) {
	user, err := a.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			a.metrics.AuthAttempt("login", "rejected")
			return Session{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrNotFound)
		}
		a.metrics.AuthAttempt("login", "error")
		return Session{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			a.logger.Error().Err(err).Int64("user_id", user.ID).Msg("stored password hash is unusable")
		}
		a.metrics.AuthAttempt("login", "rejected")
		return Session{}, ErrInvalidCredentials
	}

	session, err := a.tokens.IssueSession(user.ID)
	if err != nil {
		a.metrics.AuthAttempt("login", "error")
		return Session{}, err
	}
	a.metrics.AuthAttempt("login", "success")
	return session, nil
}
