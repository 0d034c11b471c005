package config

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Empty(t, c.ServerEndpointAddr)
	assert.True(t, c.InProcess())
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 12*time.Second, c.CallTimeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.OnlineCheckInterval = 0
	require.ErrorIs(t, c.Validate(), common.ErrorInvalidInput)

	c.LoadDefaults()
	c.CallTimeout = -time.Second
	require.ErrorIs(t, c.Validate(), common.ErrorInvalidInput)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("POINTGATE_CONSOLE_SERVER_ADDR", "gate:50051")
	t.Setenv("POINTGATE_CONSOLE_CHECK_INTERVAL", "7s")
	t.Setenv("POINTGATE_CONSOLE_CALL_TIMEOUT", "1m")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "gate:50051", c.ServerEndpointAddr)
	assert.False(t, c.InProcess())
	assert.Equal(t, 7*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, time.Minute, c.CallTimeout)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("POINTGATE_CONSOLE_CALL_TIMEOUT", "soon")

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
