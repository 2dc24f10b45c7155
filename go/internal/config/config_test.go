package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoreboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), config)

	engine := config.EngineConfig()
	assert.Equal(t, time.Minute, engine.MatchDuration)
	assert.Equal(t, 17*time.Millisecond, engine.TickInterval)
	assert.Equal(t, 2*time.Second, engine.PrefixWindow)
	assert.Equal(t, 15*time.Second, engine.WarningThreshold)
	assert.False(t, engine.ConsumePrefixOnResolve)
	assert.Equal(t, time.Minute, config.PromptTimeout())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
match:
  duration_sec: 120
  consume_prefix_on_resolve: true
server:
  allowed_origins: ["https://mat1.example"]
nats:
  url: nats://localhost:4222
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, config.Match.DurationSec)
	assert.True(t, config.Match.ConsumePrefixOnResolve)
	assert.Equal(t, 2000, config.Match.PrefixWindowMs, "unset keys keep defaults")
	assert.Equal(t, []string{"https://mat1.example"}, config.Server.AllowedOrigins)
	assert.Equal(t, "nats://localhost:4222", config.NATS.URL)
	assert.Equal(t, "scoreboard.events", config.NATS.SubjectPrefix)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "match:\n  duration_sec: 120\nserver:\n  port: \"9000\"\n")
	t.Setenv("PORT", "9100")
	t.Setenv("MATCH_DURATION_SEC", "90")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", config.Server.Port)
	assert.Equal(t, 90, config.Match.DurationSec)
	assert.Equal(t, "nats://nats:4222", config.NATS.URL)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoad_BadEnvIntIsIgnored(t *testing.T) {
	t.Setenv("MATCH_DURATION_SEC", "ninety")

	config, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 60, config.Match.DurationSec)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "match: [1, 2"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "match:\n  tick_interval_ms: 0\nprompt:\n  timeout_sec: -1\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "match.tick_interval_ms")
	assert.ErrorContains(t, err, "prompt.timeout_sec")
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("SCOREBOARD_CONFIG", "")
	assert.Equal(t, DefaultPath, PathFromEnv())

	t.Setenv("SCOREBOARD_CONFIG", "/etc/scoreboard/mat1.yaml")
	assert.Equal(t, "/etc/scoreboard/mat1.yaml", PathFromEnv())
}
