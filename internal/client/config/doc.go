// Package config loads runtime configuration for the PointGate console.
//
// Sources, later ones winning:
//
//  1. Defaults (see (*Config).LoadDefaults).
//  2. A JSON file named by -c or -config. Only keys present in the file apply.
//  3. POINTGATE_CONSOLE_SERVER_ADDR, _CHECK_INTERVAL, _CALL_TIMEOUT and
//     _LOG_LEVEL environment variables.
//  4. Flags -a, -i, -w and -l.
//
// JSON example:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "call_timeout": "10s",
//	  "log_level": "warn"
//	}
package config
