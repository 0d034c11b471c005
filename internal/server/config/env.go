package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "POINTGATE_"

// parseEnv loads a dotenv file (the -env flag, or ./.env when present) into
// the process environment without overriding variables that are already set,
// then overlays every POINTGATE_* variable onto config.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlags()
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	lookupString("GRPC_ADDR", &config.EndpointAddrGRPC)
	lookupString("METRICS_ADDR", &config.MetricsAddr)
	lookupString("STORAGE", &config.StorageDriver)
	lookupString("DATABASE_DSN", &config.DatabaseDSN)
	lookupString("CHALLENGE_STORE", &config.ChallengeStore)
	lookupString("REDIS_ADDR", &config.RedisAddr)
	lookupString("REDIS_PASSWORD", &config.RedisPassword)
	lookupInt("REDIS_DB", &config.RedisDB)
	lookupString("SECRET_KEY", &config.SecretKey)
	lookupDuration("SESSION_VALIDITY", &config.SessionValidityDuration)
	lookupDuration("CHALLENGE_VALIDITY", &config.ChallengeValidityDuration)
	lookupDuration("CHALLENGE_RETENTION", &config.ChallengeRetention)
	lookupDuration("TOTP_STEP", &config.TOTPStep)
	lookupInt("TOTP_DIGITS", &config.TOTPDigits)
	lookupInt("TOTP_WINDOW", &config.TOTPWindow)
	lookupInt("TOTP_SECRET_LENGTH", &config.TOTPSecretLength)
	lookupString("TOTP_ISSUER", &config.TOTPIssuer)
	lookupString("CODE_DELIVERY", &config.CodeDelivery)
	lookupString("SMTP_HOST", &config.SMTPHost)
	lookupInt("SMTP_PORT", &config.SMTPPort)
	lookupString("SMTP_USER", &config.SMTPUser)
	lookupString("SMTP_PASSWORD", &config.SMTPPassword)
	lookupString("SMTP_FROM", &config.SMTPFrom)
	lookupString("LOG_LEVEL", &config.LogLevel)
	lookupString("LOG_FORMAT", &config.LogFormat)
	lookupString("ADMIN_USERNAME", &config.AdminUserName)
	lookupString("ADMIN_PASSWORD", &config.AdminPassword)
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

// lookupInt panics on a malformed value, like the JSON layer does.
func lookupInt(key string, dst *int) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
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
