package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// FilePath is the append-only log file target. Empty disables the file
	// sink.
	FilePath string `json:"filePath"`
	// RelayAddress is the filesystem path of the rendezvous datagram socket.
	// Empty disables the publish sink (and the broker has nothing to bind).
	RelayAddress string `json:"relayAddress"`
	// EnableRelayServer controls the broker and viewer-serving facility.
	// When false the process runs headless: direct Logger use (file sink and
	// raw relay sends) stays functional.
	EnableRelayServer bool `json:"enableRelayServer"`
	// ServerPort is the viewer HTTP/WebSocket listen port.
	ServerPort uint16 `json:"serverPort"`
	// HistoryDir is the directory for the broker's replay history store.
	// Empty disables history.
	HistoryDir string `json:"historyDir"`
	// HistoryMaxBytes bounds the history store; oldest payloads are trimmed
	// first. Zero or negative means no bound.
	HistoryMaxBytes int64 `json:"historyMaxBytes"`
}

// DefaultServerPort matches the port the viewer page expects when none is
// configured.
const DefaultServerPort uint16 = 18080

// Default returns built-in defaults: both sinks disabled, relay serving on.
func Default() Config {
	return Config{
		EnableRelayServer: true,
		ServerPort:        DefaultServerPort,
	}
}

// Load reads configuration from a JSON file over the defaults. If path is
// empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultRelayAddress returns the rendezvous socket path under the OS temp
// directory.
func DefaultRelayAddress() string {
	return filepath.Join(os.TempDir(), "vslogger.sock")
}

// DefaultHistoryDir returns the default replay-history directory. XDG data
// home is preferred, then a dotdir in the user's home, then a local dir.
func DefaultHistoryDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vslogger", "history")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", "vslogger-history")
	}
	return filepath.Join(home, ".vslogger", "history")
}
