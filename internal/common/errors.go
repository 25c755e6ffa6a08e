// Package common defines shared sentinel errors used across the service,
// repository, and transport layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. ErrInvalidCredentials is deliberately generic:
	// it never distinguishes an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrHashing            = errors.New("password hashing failed")
	ErrMalformedHash      = errors.New("malformed password hash")

	// Token verification errors. The HTTP layer collapses all of these to a
	// single unauthorized response; the distinction exists for logging only.
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrWrongTokenType   = errors.New("wrong token type")
	ErrTokenRevoked     = errors.New("token revoked or consumed")

	// Refresh token store failures (infrastructure, retryable).
	ErrTokenStore = errors.New("token store failure")
)
