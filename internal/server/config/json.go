package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pointgate/internal/flagx"
	"github.com/dmitrijs2005/pointgate/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// both "5m" and integer nanoseconds are accepted. Pointer and zero values
// mean "not set" and leave the current value in place.
type JsonConfig struct {
	EndpointAddrGRPC          string         `json:"endpoint_addr_grpc"`
	MetricsAddr               string         `json:"metrics_addr"`
	StorageDriver             string         `json:"storage"`
	DatabaseDSN               string         `json:"database_dsn"`
	ChallengeStore            string         `json:"challenge_store"`
	RedisAddr                 string         `json:"redis_addr"`
	RedisPassword             string         `json:"redis_password"`
	RedisDB                   *int           `json:"redis_db"`
	SecretKey                 string         `json:"secret_key"`
	SessionValidityDuration   timex.Duration `json:"session_validity_duration"`
	ChallengeValidityDuration timex.Duration `json:"challenge_validity_duration"`
	ChallengeRetention        timex.Duration `json:"challenge_retention"`
	TOTPStep                  timex.Duration `json:"totp_step"`
	TOTPDigits                int            `json:"totp_digits"`
	TOTPWindow                *int           `json:"totp_window"`
	TOTPSecretLength          int            `json:"totp_secret_length"`
	TOTPIssuer                string         `json:"totp_issuer"`
	CodeDelivery              string         `json:"code_delivery"`
	SMTPHost                  string         `json:"smtp_host"`
	SMTPPort                  int            `json:"smtp_port"`
	SMTPUser                  string         `json:"smtp_user"`
	SMTPPassword              string         `json:"smtp_password"`
	SMTPFrom                  string         `json:"smtp_from"`
	LogLevel                  string         `json:"log_level"`
	LogFormat                 string         `json:"log_format"`
	AdminUserName             string         `json:"admin_username"`
	AdminPassword             string         `json:"admin_password"`
}

// parseJson overlays values from the file named by -c / -config. Without the
// flag nothing is loaded. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err = json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.ChallengeStore, c.ChallengeStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	setString(&config.SecretKey, c.SecretKey)

	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.ChallengeValidityDuration.Duration > 0 {
		config.ChallengeValidityDuration = c.ChallengeValidityDuration.Duration
	}
	if c.ChallengeRetention.Duration > 0 {
		config.ChallengeRetention = c.ChallengeRetention.Duration
	}
	if c.TOTPStep.Duration > 0 {
		config.TOTPStep = c.TOTPStep.Duration
	}

	setInt(&config.TOTPDigits, c.TOTPDigits)
	if c.TOTPWindow != nil {
		config.TOTPWindow = *c.TOTPWindow
	}
	setInt(&config.TOTPSecretLength, c.TOTPSecretLength)
	setString(&config.TOTPIssuer, c.TOTPIssuer)

	setString(&config.CodeDelivery, c.CodeDelivery)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)

	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.AdminUserName, c.AdminUserName)
	setString(&config.AdminPassword, c.AdminPassword)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
