// Package todos declares the server-side repository contract for todo items.
// All operations are scoped by owner: a todo is only visible through its
// owner's ID, so cross-owner access surfaces as not-found.
package todos

import (
	"context"

	"github.com/opavlenko/taskhub/internal/server/models"
)

// ListFilter narrows List results. A nil Completed means no filtering by
// completion state.
type ListFilter struct {
	Completed *bool
	Limit     int
	Offset    int
}

type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Todo, error)
	List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) error
	Toggle(ctx context.Context, ownerID, id string) (*models.Todo, error)
	// Stats returns the total and completed todo counts for one owner.
	Stats(ctx context.Context, ownerID string) (total, completed int64, err error)
}
