// Package repomanager selects the storage behind the server repositories:
// PostgreSQL when a DSN is configured, in-memory maps otherwise.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/server/repositories/logs"
	"github.com/dmitrijs2005/gigbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gigbook/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Logs() logs.Repository
	Close() error
}

// New returns a PostgreSQL-backed manager for a non-empty dsn and an
// in-memory one otherwise.
func New(dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewMemoryRepositoryManager(), nil
	}
	return NewPostgresRepositoryManager(dsn)
}
