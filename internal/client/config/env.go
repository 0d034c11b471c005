package config

import (
	"os"
	"time"
)

const envPrefix = "POINTGATE_CONSOLE_"

// parseEnv overlays cfg with POINTGATE_CONSOLE_* variables. A malformed
// duration panics.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(envPrefix + "SERVER_ADDR"); ok {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	lookupDuration("CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	lookupDuration("CALL_TIMEOUT", &cfg.CallTimeout)
}

func lookupDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
