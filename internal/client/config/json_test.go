package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overlays present keys only", func(t *testing.T) {
		os.Args = []string{"console", "-config", writeConfigFile(t, `{"server_endpoint_addr":"gate:9000","call_timeout":"4s"}`)}

		var cfg Config
		cfg.LoadDefaults()
		parseJson(&cfg)

		assert.Equal(t, "gate:9000", cfg.ServerEndpointAddr)
		assert.Equal(t, 4*time.Second, cfg.CallTimeout)
		assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("empty address selects in-process", func(t *testing.T) {
		os.Args = []string{"console", "-c", writeConfigFile(t, `{"server_endpoint_addr":"","log_level":"debug"}`)}

		cfg := Config{ServerEndpointAddr: "gate:9000"}
		parseJson(&cfg)

		assert.True(t, cfg.InProcess())
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("no file leaves config alone", func(t *testing.T) {
		os.Args = []string{"console"}

		cfg := Config{ServerEndpointAddr: "defaults:1234", OnlineCheckInterval: 42 * time.Second}
		parseJson(&cfg)

		assert.Equal(t, "defaults:1234", cfg.ServerEndpointAddr)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		os.Args = []string{"console", "-config", writeConfigFile(t, `{ not json`)}

		var cfg Config
		require.Panics(t, func() { parseJson(&cfg) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"console", "-config", filepath.Join(t.TempDir(), "absent.json")}

		var cfg Config
		require.Panics(t, func() { parseJson(&cfg) })
	})
}
