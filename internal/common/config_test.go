package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "data/folio", config.Storage.Path)
	assert.Equal(t, 30*time.Minute, config.Scheduler.GetAnalysisInterval())
	assert.Equal(t, 15*time.Minute, config.Scheduler.GetNewsInterval())
	assert.Equal(t, 5*time.Second, config.Scheduler.GetBootstrapDelay())
	assert.False(t, config.IsProduction())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment = "production"

[server]
port = 9090

[scheduler]
analysis_interval = "10m"

[clients.marketfeed]
api_key = "file-key"
timeout = "5s"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, config.IsProduction())
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 10*time.Minute, config.Scheduler.GetAnalysisInterval())
	// unset sections keep defaults
	assert.Equal(t, 15*time.Minute, config.Scheduler.GetNewsInterval())
	assert.Equal(t, "file-key", config.Clients.MarketFeed.APIKey)
	assert.Equal(t, 5*time.Second, config.Clients.MarketFeed.GetTimeout())
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	config, err := LoadConfig("/nonexistent/folio.toml")
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "not [valid toml")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_PORT", "7001")
	t.Setenv("FOLIO_ENV", "production")
	t.Setenv("FOLIO_MARKETFEED_API_KEY", "env-key")
	t.Setenv("FOLIO_USE_MOCK_DATA", "true")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7001, config.Server.Port)
	assert.True(t, config.IsProduction())
	assert.Equal(t, "env-key", config.Clients.MarketFeed.APIKey)
	assert.True(t, config.Clients.MarketFeed.UseMockData)
}

func TestSchedulerConfig_InvalidDurations(t *testing.T) {
	c := SchedulerConfig{AnalysisInterval: "soon", NewsInterval: "-5m", BootstrapDelay: ""}

	assert.Equal(t, 30*time.Minute, c.GetAnalysisInterval())
	assert.Equal(t, 15*time.Minute, c.GetNewsInterval())
	assert.Equal(t, 5*time.Second, c.GetBootstrapDelay())
}
