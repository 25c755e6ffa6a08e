package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Insert(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, status, expires_at)
		VALUES ($1, $2, 'active', $3)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenID, userID, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, tokenID string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, status, expires_at, created_at
		FROM refresh_tokens
		WHERE id = $1
	`
	token := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, tokenID).
		Scan(&token.ID, &token.UserID, &token.Status, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// TryConsume is the serialization point for refresh rotation: a conditional
// UPDATE with a rows-affected check, so the database arbitrates between
// concurrent callers even across multiple service instances.
func (r *PostgresRepository) TryConsume(ctx context.Context, tokenID string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET status = 'consumed'
		WHERE id = $1 AND status = 'active' AND expires_at > now()
	`
	res, err := r.db.ExecContext(ctx, query, tokenID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, tokenID string) error {
	query := `
		UPDATE refresh_tokens
		SET status = 'revoked'
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, tokenID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsActive(ctx context.Context, tokenID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE id = $1 AND status = 'active' AND expires_at > now()
		)
	`
	var active bool
	if err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&active); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return active, nil
}

func (r *PostgresRepository) PurgeDead(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at < $1 OR status <> 'active'
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
