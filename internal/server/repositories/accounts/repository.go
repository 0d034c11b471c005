// Package accounts is the identity store: account records keyed by username.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

// Repository returns copies. Changes to a live account go through the
// field-scoped setters, which touch only their own columns so concurrent
// updates of different fields never undo each other. The setters return
// common.ErrorNotFound for an unknown username.
type Repository interface {
	Get(ctx context.Context, userName string) (*models.Account, error)
	Exists(ctx context.Context, userName string) (bool, error)
	// Create fails with common.ErrorAlreadyExists for a taken username.
	Create(ctx context.Context, a *models.Account) error
	Upsert(ctx context.Context, a *models.Account) error
	All(ctx context.Context) ([]*models.Account, error)

	TouchLastLogin(ctx context.Context, userName string, at time.Time) error
	// SetPassword stores hash and sets both temporary-password flags to
	// temporary.
	SetPassword(ctx context.Context, userName, hash string, temporary bool) error
	// SetTOTPSecret stores secret; an empty secret disables time-based codes.
	SetTOTPSecret(ctx context.Context, userName, secret string) error
	// SetProfile replaces the profile fields and returns the updated account.
	SetProfile(ctx context.Context, userName string, p models.Profile) (*models.Account, error)
}
