package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is how long an issued session token stays valid.
const TokenValidity = 24 * time.Hour

// sessionClaims carries the user id as a numeric subject.
type sessionClaims struct {
	Subject   int64            `json:"sub"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c sessionClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c sessionClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c sessionClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c sessionClaims) GetIssuer() (string, error)                   { return "", nil }
func (c sessionClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
func (c sessionClaims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// TokenAuthority issues and verifies HS256 session tokens.
// It holds no per-session state; Verify is safe to call on every request.
type TokenAuthority struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

type TokenOption func(*TokenAuthority)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(a *TokenAuthority) {
		a.now = now
	}
}

func NewTokenAuthority(secret string, opts ...TokenOption) (*TokenAuthority, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	a := &TokenAuthority{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(a.now),
	)
	return a, nil
}

// Session is a signed token together with the expiry encoded in it.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Issue signs a token for userID that expires TokenValidity from now.
func (a *TokenAuthority) Issue(userID int64) (string, error) {
	session, err := a.IssueSession(userID)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// IssueSession is Issue that also reports the signed expiry, which is
// truncated to whole seconds.
func (a *TokenAuthority) IssueSession(userID int64) (Session, error) {
	claims := sessionClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(a.now().Add(TokenValidity)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Session{Token: signed, ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}

// Verify checks the signature and expiry of token and returns its subject.
func (a *TokenAuthority) Verify(token string) (int64, error) {
	var claims sessionClaims
	_, err := a.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}
	if claims.Subject <= 0 {
		return 0, ErrInvalid
	}
	return claims.Subject, nil
}
