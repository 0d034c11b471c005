package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedInOrder(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{"00001_accounts.sql", "00002_wallets.sql", "00003_transactions.sql"}, files)

	for _, f := range files {
		b, err := fs.ReadFile(Migrations, f)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(b), "-- +goose Up"), f)
		assert.True(t, strings.Contains(string(b), "-- +goose Down"), f)
	}
}
