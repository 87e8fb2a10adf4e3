package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
	ErrConflict           = errors.New("username or email already registered")
	ErrInvalid            = errors.New("invalid token")
	ErrExpired            = errors.New("token expired")
	ErrStorage            = errors.New("credential storage failure")
	ErrInvalidInput       = errors.New("invalid registration input")
	ErrMissingSecret      = errors.New("token signing secret is not configured")
)
