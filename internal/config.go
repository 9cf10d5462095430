package internal

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Transport names accepted in config and flags.
const (
	TransportWebSocket    = "ws"
	TransportQUIC         = "quic"
	TransportWebTransport = "webtransport"
)

// Config is the player configuration, loadable from a TOML file.
// Flag values override whatever the file sets.
type Config struct {
	Addr           string   `toml:"addr"`
	Transport      string   `toml:"transport"`
	OutputDir      string   `toml:"output_dir"`
	QueueHighWater int      `toml:"queue_high_water"`
	LogLevel       string   `toml:"log_level"`
	Insecure       bool     `toml:"insecure"`
	Items          []string `toml:"items"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           "ws://localhost:9988/",
		Transport:      TransportWebSocket,
		OutputDir:      ".",
		QueueHighWater: defaultHighWater,
		LogLevel:       "info",
	}
}

// LoadConfig reads a TOML config file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportWebSocket, TransportQUIC, TransportWebTransport:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.QueueHighWater <= 0 {
		return fmt.Errorf("queue_high_water must be positive, got %d", c.QueueHighWater)
	}
	return nil
}
