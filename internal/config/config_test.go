package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "baseline", cfg.Agent.Variant)
	assert.True(t, cfg.OrderAPI.Simulate)
	assert.Equal(t, 5*time.Second, cfg.OrderAPI.Timeout)
	assert.Equal(t, 10, cfg.Policy.CancellationWindowDays)
	assert.Equal(t, 3, cfg.Policy.MaxCancellationsPerUserMonth)
	assert.Equal(t, []string{"2025-12-25", "2025-01-01"}, cfg.Policy.BlackoutDates)
	assert.Equal(t, 10.0, cfg.Sentiment.FrustrationThreshold)
	assert.Equal(t, 4.0, cfg.Eval.PassThreshold)
	assert.Equal(t, 0.15, cfg.LLM.DecisionTemperature)
	assert.Equal(t, 0.5, cfg.LLM.RewriteTemperature)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenbot.yaml")
	content := `
agent:
  variant: zenbot
order_api:
  simulate: false
  timeout: 2s
policy:
  cancellation_window_days: 14
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zenbot", cfg.Agent.Variant)
	assert.False(t, cfg.OrderAPI.Simulate)
	assert.Equal(t, 2*time.Second, cfg.OrderAPI.Timeout)
	assert.Equal(t, 14, cfg.Policy.CancellationWindowDays)
	// Untouched keys keep defaults.
	assert.Equal(t, 3, cfg.Policy.MaxCancellationsPerUserMonth)
}

func TestLoadRejectsUnknownVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent:\n  variant: oracle\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown agent variant")
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
