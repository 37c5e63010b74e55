package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gigbook/internal/server/repositories/logs"
	"github.com/dmitrijs2005/gigbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gigbook/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Data is lost
// on restart.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	logs          *logs.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		logs:          logs.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Logs() logs.Repository {
	return m.logs
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
