package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	cfg := config.gameConfig()
	require.Equal(t, 60, cfg.DefaultTimeLimitSec)
	require.Equal(t, 3, cfg.AttemptsPerRound)
	require.Equal(t, 3, cfg.MinPlayersToStart)
	require.Equal(t, 2*time.Second, cfg.RotateDelay)
	require.Equal(t, ":8080", config.addr())
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
game:
  default_time_limit_sec: 30
  attempts_per_round: 5
  rotate_delay_sec: 1
`), 0o644))

	config, err := loadConfig(path)
	require.NoError(t, err)

	cfg := config.gameConfig()
	require.Equal(t, 30, cfg.DefaultTimeLimitSec)
	require.Equal(t, 5, cfg.AttemptsPerRound)
	require.Equal(t, 3, cfg.MinPlayersToStart)
	require.Equal(t, time.Second, cfg.RotateDelay)
	require.Equal(t, ":9090", config.addr())
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
}
