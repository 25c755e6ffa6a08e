package models

import "time"

// Refresh token lifecycle states. Active is the only non-terminal state:
// a token leaves it exactly once, by rotation (consumed), explicit logout
// (revoked), or passing its expiry.
const (
	RefreshTokenActive   = "active"
	RefreshTokenConsumed = "consumed"
	RefreshTokenRevoked  = "revoked"
)

// RefreshToken is the stored record for an issued refresh token, keyed by
// the token's jti claim. The signed token itself is never persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	Status    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
