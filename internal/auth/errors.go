package auth

import "errors"

// Domain errors for the authentication provider
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Validation errors
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	ErrEmptyName    = errors.New("display name cannot be empty")
)
