package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryManager_SharesStores(t *testing.T) {
	ctx := context.Background()
	var m RepositoryManager = NewMemoryRepositoryManager()
	require.NoError(t, m.RunMigrations(ctx))

	err := m.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Accounts.Create(ctx, &models.Account{UserName: "alice"})
	})
	require.NoError(t, err)

	ok, err := m.Repositories().Accounts.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	boom := errors.New("boom")
	require.ErrorIs(t, m.WithTx(ctx, func(context.Context, Repositories) error { return boom }), boom)
	require.NoError(t, m.Close())
}
