// Package common defines the error taxonomy and small helpers shared by the
// client and server layers of gigbook. Callers should match errors with
// errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input (email, password, username).
	// It is surfaced immediately and never retried.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate marks an email or username already in use.
	ErrDuplicate = errors.New("already exists")

	// ErrUnauthorized marks a missing, expired or rejected token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnavailable marks a remote API that could not be reached.
	ErrUnavailable = errors.New("server unavailable")

	// ErrServer marks a 5xx answer from the remote API.
	ErrServer = errors.New("server error")

	// ErrStorage marks a local database that could not be opened or initialized.
	ErrStorage = errors.New("local storage unavailable")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidToken        = errors.New("invalid token")
)
