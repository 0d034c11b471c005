package wallets

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Create(ctx, &models.Wallet{ID: "w1", OwnerUserName: "alice", Balance: decimal.NewFromInt(5)}))
	require.ErrorIs(t, r.Create(ctx, &models.Wallet{ID: "w1"}), common.ErrorAlreadyExists)
	require.ErrorIs(t, r.Create(ctx, &models.Wallet{ID: "w2", Balance: decimal.NewFromInt(-1)}), common.ErrorInvalidInput)

	w, err := r.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "alice", w.OwnerUserName)

	w, err = r.GetForUpdate(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(5)))

	_, err = r.Get(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_GetByOwnerReturnsFirst(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Create(ctx, &models.Wallet{ID: "z-first", OwnerUserName: "alice"}))
	require.NoError(t, r.Create(ctx, &models.Wallet{ID: "a-second", OwnerUserName: "alice"}))

	w, err := r.GetByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "z-first", w.ID)

	_, err = r.GetByOwner(ctx, "bob")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_SaveWritesBack(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Create(ctx, &models.Wallet{ID: "w1", OwnerUserName: "alice"}))

	w, err := r.Get(ctx, "w1")
	require.NoError(t, err)
	require.NoError(t, w.Credit(decimal.NewFromInt(10)))
	w.AppendHistory("t1")

	stored, err := r.Get(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero(), "unsaved copy must not leak")

	require.NoError(t, r.Save(ctx, w))
	w.AppendHistory("t1")
	w.AppendHistory("t2")
	require.NoError(t, r.Save(ctx, w))

	stored, err = r.Get(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []string{"t1", "t2"}, stored.History)

	require.ErrorIs(t, r.Save(ctx, &models.Wallet{ID: "nope"}), common.ErrorNotFound)
}
