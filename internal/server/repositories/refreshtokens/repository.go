// Package refreshtokens declares the server-side repository contract for
// tracking issued refresh tokens in persistent storage.
//
// Rows are keyed by the token's jti claim; the signed token string itself is
// never stored. The store is the authority for the token lifecycle:
// active -> consumed (rotation) | revoked (logout), plus passive expiry.
package refreshtokens

import (
	"context"
	"time"

	"github.com/opavlenko/taskhub/internal/server/models"
)

type Repository interface {
	// Insert records a newly issued token in the active state.
	Insert(ctx context.Context, tokenID, userID string, expiresAt time.Time) error

	// Find returns the stored record for tokenID, or common.ErrorNotFound.
	Find(ctx context.Context, tokenID string) (*models.RefreshToken, error)

	// TryConsume atomically moves an active, unexpired token to the consumed
	// state. It reports whether this call won the transition: under N
	// concurrent calls for the same token, exactly one observes true.
	TryConsume(ctx context.Context, tokenID string) (bool, error)

	// Revoke marks the token revoked regardless of its current state.
	// Revoking an absent, consumed, or already-revoked token is not an error.
	Revoke(ctx context.Context, tokenID string) error

	// IsActive reports whether the token exists, is in the active state, and
	// has not expired.
	IsActive(ctx context.Context, tokenID string) (bool, error)

	// PurgeDead deletes rows that are expired or have left the active state,
	// returning the number of rows removed. Absent rows are treated as
	// revoked at verification time, so purging is safe at any point.
	PurgeDead(ctx context.Context, now time.Time) (int64, error)
}
