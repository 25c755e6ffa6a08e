package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opavlenko/taskhub/internal/common"
	"github.com/opavlenko/taskhub/internal/dbx"
	"github.com/opavlenko/taskhub/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {

	query :=
		`INSERT INTO todos (owner_id, title, description, completed, priority)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		todo.OwnerID, todo.Title, todo.Description, todo.Completed, todo.Priority).
		Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	query := `
		SELECT id, owner_id, title, description, completed, priority, created_at, updated_at
		FROM todos
		WHERE id = $1 AND owner_id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Todo, error) {
	query := `
		SELECT id, owner_id, title, description, completed, priority, created_at, updated_at
		FROM todos
		WHERE owner_id = $1 AND ($2::boolean IS NULL OR completed = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var completed sql.NullBool
	if filter.Completed != nil {
		completed = sql.NullBool{Bool: *filter.Completed, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, ownerID, completed, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Todo
	for rows.Next() {
		todo := &models.Todo{}
		if err := rows.Scan(&todo.ID, &todo.OwnerID, &todo.Title, &todo.Description,
			&todo.Completed, &todo.Priority, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, priority = $4, updated_at = now()
		WHERE id = $5 AND owner_id = $6
		RETURNING id, owner_id, title, description, completed, priority, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query,
		todo.Title, todo.Description, todo.Completed, todo.Priority, todo.ID, todo.OwnerID))
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND owner_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Toggle(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET completed = NOT completed, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, description, completed, priority, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) Stats(ctx context.Context, ownerID string) (int64, int64, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM todos
		WHERE owner_id = $1
	`
	var total, completed int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, completed, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Todo, error) {
	todo := &models.Todo{}
	err := row.Scan(&todo.ID, &todo.OwnerID, &todo.Title, &todo.Description,
		&todo.Completed, &todo.Priority, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}
