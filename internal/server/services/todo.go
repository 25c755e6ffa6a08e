package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/opavlenko/taskhub/internal/common"
	"github.com/opavlenko/taskhub/internal/logging"
	"github.com/opavlenko/taskhub/internal/server/models"
	"github.com/opavlenko/taskhub/internal/server/repositories/repomanager"
	"github.com/opavlenko/taskhub/internal/server/repositories/todos"
)

// ErrValidation marks invalid todo input (empty title, unknown priority).
var ErrValidation = errors.New("validation error")

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// TodoInput carries the writable fields of a todo.
type TodoInput struct {
	Title       string
	Description string
	Completed   bool
	Priority    string
}

// TodoService implements owner-scoped todo CRUD.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TodoService {
	return &TodoService{db: db, repomanager: m, logger: logger.With("service", "todo")}
}

func (s *TodoService) Create(ctx context.Context, ownerID string, in TodoInput) (*models.Todo, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Todos(s.db)
	todo, err := repo.Create(ctx, &models.Todo{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
	})
	if err != nil {
		s.logger.Error(ctx, "todo creation failed", "error", err)
		return nil, common.ErrorInternal
	}
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	todo, err := s.repomanager.Todos(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err)
	}
	return todo, nil
}

func (s *TodoService) List(ctx context.Context, ownerID string, completed *bool, limit, offset int) ([]*models.Todo, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	result, err := s.repomanager.Todos(s.db).List(ctx, ownerID, todos.ListFilter{
		Completed: completed,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		s.logger.Error(ctx, "todo list failed", "error", err)
		return nil, common.ErrorInternal
	}
	if result == nil {
		result = []*models.Todo{}
	}
	return result, nil
}

func (s *TodoService) Update(ctx context.Context, ownerID, id string, in TodoInput) (*models.Todo, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Todos(s.db)
	todo, err := repo.Update(ctx, &models.Todo{
		ID:          id,
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
	})
	if err != nil {
		return nil, s.mapRepoError(ctx, err)
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repomanager.Todos(s.db).Delete(ctx, ownerID, id); err != nil {
		return s.mapRepoError(ctx, err)
	}
	return nil
}

func (s *TodoService) Toggle(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	todo, err := s.repomanager.Todos(s.db).Toggle(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err)
	}
	return todo, nil
}

// TodoStats summarizes one owner's todos.
type TodoStats struct {
	Total          int64
	Completed      int64
	Pending        int64
	CompletionRate float64
}

func (s *TodoService) Stats(ctx context.Context, ownerID string) (*TodoStats, error) {
	total, completed, err := s.repomanager.Todos(s.db).Stats(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "todo stats failed", "error", err)
		return nil, common.ErrorInternal
	}

	stats := &TodoStats{Total: total, Completed: completed, Pending: total - completed}
	if total > 0 {
		stats.CompletionRate = float64(completed) / float64(total)
	}
	return stats, nil
}

func (s *TodoService) mapRepoError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, "todo repository failure", "error", err)
	return common.ErrorInternal
}

func validateInput(in *TodoInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrValidation
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(in.Priority) {
		return ErrValidation
	}
	return nil
}
