package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/opavlenko/taskhub/internal/logging"
	"github.com/opavlenko/taskhub/internal/server/repositories/repomanager"
)

// Janitor periodically purges refresh token rows that can no longer
// authenticate anything: expired, consumed, or revoked. Verification never
// depends on it; absent rows read as revoked.
type Janitor struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	logger      logging.Logger
}

func NewJanitor(db *sql.DB, m repomanager.RepositoryManager, interval time.Duration, logger logging.Logger) *Janitor {
	return &Janitor{db: db, repomanager: m, interval: interval, logger: logger.With("service", "janitor")}
}

// Run blocks until ctx is cancelled, purging once per interval.
// An interval of zero disables the janitor entirely.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	repo := j.repomanager.RefreshTokens(j.db)
	n, err := repo.PurgeDead(ctx, time.Now())
	if err != nil {
		j.logger.Error(ctx, "refresh token purge failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info(ctx, "purged dead refresh tokens", "count", n)
	}
}
