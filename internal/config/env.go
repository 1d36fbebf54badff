package config

import (
	"os"
	"strconv"
)

// FromEnv overlays VSLOG_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("VSLOG_FILE"); v != "" {
		cfg.FilePath = v
	}
	if v := os.Getenv("VSLOG_RELAY_ADDRESS"); v != "" {
		cfg.RelayAddress = v
	}
	if v := os.Getenv("VSLOG_ENABLE_RELAY_SERVER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableRelayServer = b
		}
	}
	if v := os.Getenv("VSLOG_SERVER_PORT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.ServerPort = uint16(n)
		}
	}
	if v := os.Getenv("VSLOG_HISTORY_DIR"); v != "" {
		cfg.HistoryDir = v
	}
	if v := os.Getenv("VSLOG_HISTORY_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.HistoryMaxBytes = n
		}
	}
}
