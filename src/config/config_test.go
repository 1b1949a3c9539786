package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.UserAgents, 6)
	assert.Equal(t, 15*time.Second, cfg.StrikeWait())
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}, cfg.Backoffs())
	assert.True(t, cfg.ContinueOnDeterministic)
	assert.Equal(t, "N/A", cfg.Placeholder)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
headless: false
min_delay_sec: 1.5
max_delay_sec: 2.5
strike_wait_sec: 30
backoff_sec: [1, 2]
placeholder: "-"
continue_on_deterministic: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Headless)
	assert.Equal(t, 1.5, cfg.MinDelaySec)
	assert.Equal(t, 30*time.Second, cfg.StrikeWait())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, cfg.Backoffs())
	assert.Equal(t, "-", cfg.Placeholder)
	assert.False(t, cfg.ContinueOnDeterministic)

	// Untouched keys keep their defaults.
	assert.Len(t, cfg.UserAgents, 6)
	assert.Equal(t, 60*time.Second, cfg.NavTimeout())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_agents: []\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "user agent pool")
}

func TestValidate(t *testing.T) {
	t.Run("inverted delay interval", func(t *testing.T) {
		cfg := Default()
		cfg.MinDelaySec, cfg.MaxDelaySec = 6, 3
		assert.ErrorContains(t, cfg.Validate(), "delay interval")
	})

	t.Run("empty backoff schedule", func(t *testing.T) {
		cfg := Default()
		cfg.BackoffSec = nil
		assert.ErrorContains(t, cfg.Validate(), "backoff schedule")
	})

	t.Run("non-positive strike wait", func(t *testing.T) {
		cfg := Default()
		cfg.StrikeWaitSec = 0
		assert.ErrorContains(t, cfg.Validate(), "strike wait")
	})
}
