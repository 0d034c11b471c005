package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   server address; empty runs one in-process
//	-i int      online check interval, seconds
//	-w int      per-call timeout, seconds
//	-l string   log level
//
// Other flags (-c, -config) are filtered out first.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-w", "-l"})

	fs := flag.NewFlagSet("console", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "server address (empty runs one in-process)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	timeout := fs.Int("w", int(cfg.CallTimeout.Seconds()), "call timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	cfg.CallTimeout = time.Duration(*timeout) * time.Second
}
