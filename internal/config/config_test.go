package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ogulcanaydogan/settings-bill/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 3011, cfg.Server.Port)
	assert.Equal(t, ":3011", cfg.Server.Addr())
	assert.Equal(t, "10s", cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, "journal.db", filepath.Base(cfg.Journal.Path))
	assert.False(t, cfg.Tariff.Watch)
	assert.Equal(t, "100ms", cfg.Tariff.Debounce)
	assert.Empty(t, cfg.Cycle.ResetSchedule)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: 8000
journal:
  enabled: true
  path: /tmp/test.db
tariff:
  file: tariff.yaml
  watch: true
cycle:
  reset_schedule: "0 0 1 * *"
logging:
  level: debug
alerts:
  webhook:
    enabled: true
    url: http://example.com/hook
`)
	err := os.WriteFile(cfgPath, data, 0o644)
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "/tmp/test.db", cfg.Journal.Path)
	assert.Equal(t, "tariff.yaml", cfg.Tariff.File)
	assert.True(t, cfg.Tariff.Watch)
	assert.Equal(t, "0 0 1 * *", cfg.Cycle.ResetSchedule)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Alerts.Webhook.Enabled)
	assert.Equal(t, "http://example.com/hook", cfg.Alerts.Webhook.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SB_LOGGING_LEVEL", "error")
	t.Setenv("SB_CYCLE_RESET_SCHEDULE", "@daily")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "@daily", cfg.Cycle.ResetSchedule)
}

func TestLoad_PortEnv(t *testing.T) {
	t.Setenv("PORT", "5000")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoad_PrefixedPortWinsOverPORT(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("SB_SERVER_PORT", "6000")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.Port)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	err := os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644)
	require.NoError(t, err)

	_, err = config.Load(cfgPath)
	assert.Error(t, err)
}
