package repomanager

import (
	"context"
	"database/sql"

	"github.com/opavlenko/taskhub/internal/dbx"
	"github.com/opavlenko/taskhub/internal/server/repositories/refreshtokens"
	"github.com/opavlenko/taskhub/internal/server/repositories/todos"
	"github.com/opavlenko/taskhub/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a specific DB handle,
// so services can run a repository against either the pool or an open
// transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Todos(db dbx.DBTX) todos.Repository
}
