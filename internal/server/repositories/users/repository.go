// Package users declares the server-side repository contract for user
// records in persistent storage.
package users

import (
	"context"

	"github.com/opavlenko/taskhub/internal/server/models"
)

type Repository interface {
	// Create stores a new user and returns it with its generated ID.
	// A duplicate username or email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username, or
	// common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail returns the user with the given email, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given ID, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
