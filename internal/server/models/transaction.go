package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/shopspring/decimal"
)

// AdminSender is the sender recorded for administrative credits. It never
// names a real wallet.
const AdminSender = "ADMIN_CREDIT"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// CanTransition reports whether the ledger may move a transaction from s to
// next. Only pending transactions move, and only to a terminal state.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.Terminal()
}

// Transaction records one attempted movement of points.
type Transaction struct {
	ID               string
	SenderWalletID   string
	ReceiverWalletID string
	Amount           decimal.Decimal
	Timestamp        time.Time
	Description      string
	Status           Status
}

// Succeeded is the boolean view of Status.
func (t *Transaction) Succeeded() bool {
	return t.Status == StatusCompleted
}

func (t *Transaction) IsAdminCredit() bool {
	return t.SenderWalletID == AdminSender
}

// Transition moves the transaction to next or fails with ErrorInvalidInput.
func (t *Transaction) Transition(next Status) error {
	if !t.Status.CanTransition(next) {
		return fmt.Errorf("transaction %s: %s -> %s: %w", t.ID, t.Status, next, common.ErrorInvalidInput)
	}
	t.Status = next
	return nil
}
