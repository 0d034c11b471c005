package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
)

// Config holds runtime settings for the PointGate console.
//
// An empty ServerEndpointAddr runs the server in-process on a loopback port,
// with codes printed to the console. LogLevel applies to the console's own
// log and to the in-process server, both written to stderr.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	CallTimeout         time.Duration
	LogLevel            string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = ""
	c.OnlineCheckInterval = 3 * time.Second
	c.CallTimeout = 12 * time.Second
	c.LogLevel = "warn"
}

// InProcess reports whether the console starts its own server.
func (c *Config) InProcess() bool {
	return c.ServerEndpointAddr == ""
}

func (c *Config) Validate() error {
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive: %w", common.ErrorInvalidInput)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call timeout must be positive: %w", common.ErrorInvalidInput)
	}
	return nil
}

// LoadConfig applies defaults, a JSON file, POINTGATE_CONSOLE_* variables
// and flags, in that order, and panics on an invalid result.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
