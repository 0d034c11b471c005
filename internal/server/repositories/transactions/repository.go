// Package transactions stores the ledger's transaction records.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transaction) error
	Get(ctx context.Context, id string) (*models.Transaction, error)
	// ForWallet returns transactions sent or received by walletID, oldest first.
	ForWallet(ctx context.Context, walletID string) ([]*models.Transaction, error)
	// Save persists the status of an existing transaction.
	Save(ctx context.Context, t *models.Transaction) error
}
