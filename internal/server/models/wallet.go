package models

import (
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/shopspring/decimal"
)

// Wallet is a point balance owned by one account. History lists the IDs of
// transactions applied to the wallet, oldest first.
type Wallet struct {
	ID            string
	OwnerUserName string
	Balance       decimal.Decimal
	History       []string
}

// Clone returns a copy that shares no memory with w.
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.History = append([]string(nil), w.History...)
	return &c
}

// Deduct removes amount from the balance. It fails with
// ErrInsufficientBalance instead of letting the balance go negative.
func (w *Wallet) Deduct(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("deduct %s: %w", amount, common.ErrorInvalidInput)
	}
	if w.Balance.LessThan(amount) {
		return fmt.Errorf("wallet %s: %w", w.ID, common.ErrInsufficientBalance)
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

func (w *Wallet) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit %s: %w", amount, common.ErrorInvalidInput)
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

func (w *Wallet) AppendHistory(txID string) {
	w.History = append(w.History, txID)
}
