// Package wallets stores point wallets and their transaction histories.
package wallets

import (
	"context"

	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

// Repository returns copies of stored wallets. Save writes back the balance
// and appends any history entries not yet stored; history is never rewritten.
type Repository interface {
	Create(ctx context.Context, w *models.Wallet) error
	Get(ctx context.Context, id string) (*models.Wallet, error)
	// GetForUpdate is Get with a row lock when the repository runs inside a
	// storage transaction.
	GetForUpdate(ctx context.Context, id string) (*models.Wallet, error)
	// GetByOwner returns the owner's first wallet.
	GetByOwner(ctx context.Context, owner string) (*models.Wallet, error)
	Save(ctx context.Context, w *models.Wallet) error
}
