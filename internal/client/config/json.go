package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pointgate/internal/flagx"
	"github.com/dmitrijs2005/pointgate/internal/timex"
)

// fileConfig mirrors Config for the JSON layer. Absent keys stay nil and
// leave the current value alone.
type fileConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	CallTimeout         *timex.Duration `json:"call_timeout"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c / -config, if any.
// Read and decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		panic(err)
	}

	if fc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *fc.ServerEndpointAddr
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.CallTimeout != nil {
		cfg.CallTimeout = fc.CallTimeout.Duration
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
}
