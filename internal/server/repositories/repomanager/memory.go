package repomanager

import (
	"context"

	"github.com/dmitrijs2005/pointgate/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/wallets"
)

// MemoryRepositoryManager keeps everything in process memory. WithTx has no
// rollback: writers of related records hold the ledger's wallet locks, and
// the memory repositories only fail before they change anything.
type MemoryRepositoryManager struct {
	repos Repositories
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repos: Repositories{
		Accounts:     accounts.NewMemoryRepository(),
		Wallets:      wallets.NewMemoryRepository(),
		Transactions: transactions.NewMemoryRepository(),
	}}
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Repositories() Repositories {
	return m.repos
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	return fn(ctx, m.repos)
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
