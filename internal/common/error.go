// Package common defines shared constants, sentinel errors and small helpers
// used across the imagevault server. Callers should use errors.Is to match
// the sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorInvalidInput    = errors.New("invalid input")
	ErrorUnauthorized    = errors.New("invalid credentials")
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorNotEmpty        = errors.New("folder is not empty")
	ErrorUploadFailed    = errors.New("upload failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
