package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-m string   metrics bind address
//	-storage    memory | postgres
//	-d string   PostgreSQL DSN
//	-cs string  challenge store: memory | redis
//	-redis      Redis address
//	-s string   JWT HMAC secret key
//	-t int      session validity, minutes
//	-o int      challenge validity, minutes
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// layers (-c, -env) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-storage", "-d", "-cs", "-redis", "-s", "-t", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for /metrics")
	fs.StringVar(&config.StorageDriver, "storage", config.StorageDriver, "storage driver (memory|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ChallengeStore, "cs", config.ChallengeStore, "challenge store (memory|redis)")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	challengeValidity := fs.Int("o", int(config.ChallengeValidityDuration.Minutes()), "challenge validity (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.ChallengeValidityDuration = time.Duration(*challengeValidity) * time.Minute
}
