package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100*time.Millisecond, cfg.GeneratorTickPeriod())
	assert.Equal(t, 200*time.Millisecond, cfg.ConsumerTickPeriod())
	assert.Equal(t, 300*time.Millisecond, cfg.DisplayRefreshPeriod())
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, 20, cfg.QueueCapacity)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueCapacity = 0
	cfg.GeneratorTickIntervalMs = -5
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "expected *multierror.Error, got %T", err)
	assert.Len(t, merr.Errors, 3)
	assert.Contains(t, err.Error(), "queueCapacity must be positive")
	assert.Contains(t, err.Error(), "generatorTickIntervalMs must be positive")
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	path := writeConfig(t, "queueCapacity: 5\nconsumerTickIntervalMs: 50\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.QueueCapacity)
	assert.Equal(t, 50, cfg.ConsumerTickIntervalMs)
	assert.Equal(t, DefaultConfig().GeneratorTickIntervalMs, cfg.GeneratorTickIntervalMs, "missing keys keep defaults")
	assert.Equal(t, DefaultConfig().HistorySize, cfg.HistorySize)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	_, err = LoadConfig(writeConfig(t, "queueCapacity: [1, 2\n"))
	assert.ErrorContains(t, err, "parsing config")

	_, err = LoadConfig(writeConfig(t, "queueCapacity: 0\n"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Setenv(LogLevelEnv, "")
	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	t.Setenv(ConfigPathEnv, writeConfig(t, "historySize: 10\nlogLevel: warn\n"))
	cfg, err = LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.HistorySize)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Setenv(LogLevelEnv, "debug")
	cfg, err = LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "LOG_LEVEL wins over the file")

	t.Setenv(LogLevelEnv, "nope")
	_, err = LoadConfigFromEnv()
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]logrus.Level{
		"":       logrus.InfoLevel,
		"info":   logrus.InfoLevel,
		"DEBUG":  logrus.DebugLevel,
		" warn ": logrus.WarnLevel,
		"error":  logrus.ErrorLevel,
		"trace":  logrus.TraceLevel,
	}
	for input, expected := range testCases {
		lvl, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, lvl, input)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "bogus"
	log := NewLogger(cfg, os.Stderr)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	cfg.LogLevel = "debug"
	assert.Equal(t, logrus.DebugLevel, NewLogger(cfg, os.Stderr).GetLevel())
}

func TestReadEnvVar(t *testing.T) {
	t.Setenv("FLOWLINE_TEST_VAR", "value")
	assert.Equal(t, "value", ReadEnvVar("FLOWLINE_TEST_VAR"))
	assert.Equal(t, "value", ReadEnvVarWithDefault("FLOWLINE_TEST_VAR", "def"))

	t.Setenv("FLOWLINE_TEST_VAR", "")
	assert.Equal(t, "", ReadEnvVar("FLOWLINE_TEST_VAR"))
	assert.Equal(t, "def", ReadEnvVarWithDefault("FLOWLINE_TEST_VAR", "def"))
	assert.Equal(t, "def", ReadEnvVarWithDefault("FLOWLINE_TEST_UNSET_VAR", "def"))
}
