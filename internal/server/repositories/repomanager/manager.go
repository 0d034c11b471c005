// Package repomanager bundles the repositories behind one handle and runs
// multi-record writes inside a storage transaction.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/pointgate/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/wallets"
)

// Repositories is one consistent view of the stores, either plain or bound
// to a transaction.
type Repositories struct {
	Accounts     accounts.Repository
	Wallets      wallets.Repository
	Transactions transactions.Repository
}

type TxFunc func(ctx context.Context, r Repositories) error

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Repositories() Repositories
	// WithTx runs fn against repositories bound to one storage transaction.
	// The Postgres manager commits when fn returns nil and rolls back
	// otherwise.
	WithTx(ctx context.Context, fn TxFunc) error
	Close() error
}
