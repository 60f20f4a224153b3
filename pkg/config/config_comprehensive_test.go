package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)

	// Retry defaults
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, BackoffExponentialJitter, cfg.Retry.Backoff.Kind)
	require.NotNil(t, cfg.Retry.Backoff.Base)
	assert.Equal(t, 1*time.Second, *cfg.Retry.Backoff.Base)
	require.NotNil(t, cfg.Retry.Backoff.Cap)
	assert.Equal(t, 1*time.Minute, *cfg.Retry.Backoff.Cap)
	require.NotNil(t, cfg.Retry.Backoff.RandomizationFactor)
	assert.Equal(t, 0.5, *cfg.Retry.Backoff.RandomizationFactor)
	assert.Nil(t, cfg.Retry.Backoff.Inner)
	assert.Empty(t, cfg.Retry.NoRetryExitCodes)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.Equal(t, 100, cfg.Logging.MaxSize)
	assert.Equal(t, 3, cfg.Logging.MaxBackups)
	assert.Equal(t, 7, cfg.Logging.MaxAge)
	assert.False(t, cfg.Logging.Compress)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "retryer.yaml")

	cfg := DefaultConfig()
	cfg.Retry.MaxAttempts = -1
	cfg.Retry.Backoff = BackoffConfig{
		Kind:                BackoffCompositeJitter,
		RandomizationFactor: Factor(0.2),
		Inner: &BackoffConfig{
			Kind: BackoffExponential,
			Base: Duration(250 * time.Millisecond),
			Cap:  Duration(0),
		},
	}

	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "retry")
	assert.Contains(t, raw, "logging")

	loaded := &Config{}
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Retry, loaded.Retry)
	assert.NoError(t, loaded.Validate())
}

func TestLoadFromFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.LoadFromFile(filepath.Join(tmpDir, "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retry: [unclosed"), 0644))

		cfg := DefaultConfig()
		err := cfg.LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := filepath.Join(tmpDir, "duration.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retry:\n  backoff:\n    base: soon\n"), 0644))

		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(path))
	})
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "retryer.yaml")
	content := `retry:
  max_attempts: 9
  backoff:
    kind: linear
    base: 1s
    cap: 10s
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("RETRYER_BACKOFF_CAP", "20s")
	t.Setenv("RETRYER_LOG_LEVEL", "error")

	cfg, err := Load(path, map[string]interface{}{
		"max-attempts": 4,
	})
	require.NoError(t, err)

	// file
	assert.Equal(t, BackoffLinear, cfg.Retry.Backoff.Kind)
	assert.Equal(t, Duration(1*time.Second), cfg.Retry.Backoff.Base)
	// env over file
	assert.Equal(t, Duration(20*time.Second), cfg.Retry.Backoff.Cap)
	assert.Equal(t, "error", cfg.Logging.Level)
	// flags over everything
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "retryer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retry:\n  max_attempts: -5\n"), 0644))

	cfg, err := Load(path, nil)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "max_attempts")
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	paths := SearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "retryer.yaml", paths[0])
	assert.Contains(t, paths, "/home/tester/.config/retryer/config.yaml")
}
