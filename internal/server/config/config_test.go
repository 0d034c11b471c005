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

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, StorageMemory, c.StorageDriver)
	assert.Equal(t, ChallengeStoreMemory, c.ChallengeStore)
	assert.Equal(t, 5*time.Minute, c.ChallengeValidityDuration)
	assert.Zero(t, c.ChallengeRetention, "challenges stay until verified")
	assert.Equal(t, 30*time.Second, c.TOTPStep)
	assert.Equal(t, 6, c.TOTPDigits)
	assert.Equal(t, 1, c.TOTPWindow)
	assert.Equal(t, 16, c.TOTPSecretLength)
	assert.Equal(t, "PointGate", c.TOTPIssuer)
	assert.Equal(t, DeliveryLog, c.CodeDelivery)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 30*time.Minute, c.SessionValidityDuration)
	assert.Equal(t, 5*time.Minute, c.ChallengeValidityDuration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"storage", func(c *Config) { c.StorageDriver = "sqlite" }},
		{"challenge store", func(c *Config) { c.ChallengeStore = "memcached" }},
		{"delivery", func(c *Config) { c.CodeDelivery = "sms" }},
		{"mail without host", func(c *Config) { c.CodeDelivery = DeliveryMail }},
		{"zero validity", func(c *Config) { c.ChallengeValidityDuration = 0 }},
		{"negative retention", func(c *Config) { c.ChallengeRetention = -time.Second }},
		{"digits", func(c *Config) { c.TOTPDigits = 4 }},
		{"short secret", func(c *Config) { c.TOTPSecretLength = 8 }},
		{"no key", func(c *Config) { c.SecretKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			require.ErrorIs(t, c.Validate(), common.ErrorInvalidInput)
		})
	}
}
