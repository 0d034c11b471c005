package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallet_DeductCredit(t *testing.T) {
	w := &Wallet{ID: "w1", Balance: decimal.NewFromInt(10)}

	require.NoError(t, w.Deduct(decimal.NewFromInt(4)))
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(6)))

	err := w.Deduct(decimal.NewFromInt(7))
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(6)), "failed deduct leaves balance")

	require.NoError(t, w.Credit(decimal.RequireFromString("0.5")))
	assert.Equal(t, "6.5", w.Balance.String())

	require.ErrorIs(t, w.Credit(decimal.Zero), common.ErrorInvalidInput)
	require.ErrorIs(t, w.Deduct(decimal.NewFromInt(-1)), common.ErrorInvalidInput)
}

func TestWallet_DeductExactBalance(t *testing.T) {
	w := &Wallet{Balance: decimal.NewFromInt(40)}
	require.NoError(t, w.Deduct(decimal.NewFromInt(40)))
	assert.True(t, w.Balance.IsZero())
}

func TestWallet_CloneIsIndependent(t *testing.T) {
	w := &Wallet{ID: "w1", History: []string{"t1"}}
	c := w.Clone()
	c.AppendHistory("t2")
	c.History[0] = "changed"

	assert.Equal(t, []string{"t1"}, w.History)
}

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusCompleted, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			tx := &Transaction{ID: "t", Status: tt.from}
			err := tx.Transition(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, tx.Status)
			} else {
				require.ErrorIs(t, err, common.ErrorInvalidInput)
				assert.Equal(t, tt.from, tx.Status)
			}
		})
	}
}

func TestTransaction_Succeeded(t *testing.T) {
	tx := &Transaction{Status: StatusPending}
	assert.False(t, tx.Succeeded())
	tx.Status = StatusCompleted
	assert.True(t, tx.Succeeded())
	tx.Status = StatusFailed
	assert.False(t, tx.Succeeded())

	assert.True(t, (&Transaction{SenderWalletID: AdminSender}).IsAdminCredit())
}

func TestChallenge_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &Challenge{ExpiresAt: now}

	assert.True(t, c.Expired(now), "expiry instant counts as expired")
	assert.False(t, c.Expired(now.Add(-time.Second)))
	assert.True(t, c.Expired(now.Add(time.Second)))
}

func TestAccount_Flags(t *testing.T) {
	a := &Account{Role: RoleAdmin}
	assert.True(t, a.IsAdmin())
	assert.False(t, a.TOTPEnabled())
	a.TOTPSecret = "GEZDGNBVGY3TQOJQ"
	assert.True(t, a.TOTPEnabled())
	assert.False(t, Role("root").Valid())
}
