package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsplay.toml")
	data := `
addr = "https://media.example.com:4443/play"
transport = "webtransport"
output_dir = "/var/media/out"
queue_high_water = 8
log_level = "debug"
insecure = true
items = ["intro", "main", "credits"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://media.example.com:4443/play", cfg.Addr)
	require.Equal(t, TransportWebTransport, cfg.Transport)
	require.Equal(t, "/var/media/out", cfg.OutputDir)
	require.Equal(t, 8, cfg.QueueHighWater)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Insecure)
	require.Equal(t, []string{"intro", "main", "credits"}, cfg.Items)
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsplay.toml")
	require.NoError(t, os.WriteFile(path, []byte(`addr = "ws://media:9988/"`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "ws://media:9988/", cfg.Addr)
	// Unset fields keep their defaults.
	require.Equal(t, TransportWebSocket, cfg.Transport)
	require.Equal(t, defaultHighWater, cfg.QueueHighWater)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport = "carrier-pigeon"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.QueueHighWater = 0
	require.Error(t, cfg.Validate())
}
