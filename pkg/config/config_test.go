package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Retry.MaxAttempts != 3 {
		t.Errorf("Expected default max attempts to be 3, got %d", config.Retry.MaxAttempts)
	}

	if config.Retry.Backoff.Kind != BackoffExponentialJitter {
		t.Errorf("Expected default backoff to be %s, got %s", BackoffExponentialJitter, config.Retry.Backoff.Kind)
	}

	if f := config.Retry.Backoff.RandomizationFactor; f == nil || *f != 0.5 {
		t.Errorf("Expected default randomization factor to be 0.5, got %v", f)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid, got: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RETRYER_MAX_ATTEMPTS", "-1")
	t.Setenv("RETRYER_BACKOFF", "LINEAR")
	t.Setenv("RETRYER_BACKOFF_BASE", "5s")
	t.Setenv("RETRYER_BACKOFF_CAP", "100s")
	t.Setenv("RETRYER_RANDOMIZATION_FACTOR", "0.25")
	t.Setenv("RETRYER_LOG_LEVEL", "debug")
	t.Setenv("RETRYER_LOG_FILE", "/tmp/retryer.log")

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Retry.MaxAttempts != -1 {
		t.Errorf("Expected max attempts to be -1, got %d", config.Retry.MaxAttempts)
	}
	if config.Retry.Backoff.Kind != BackoffLinear {
		t.Errorf("Expected backoff to be linear, got %s", config.Retry.Backoff.Kind)
	}
	if b := config.Retry.Backoff.Base; b == nil || *b != 5*time.Second {
		t.Errorf("Expected base to be 5s, got %v", b)
	}
	if c := config.Retry.Backoff.Cap; c == nil || *c != 100*time.Second {
		t.Errorf("Expected cap to be 100s, got %v", c)
	}
	if f := config.Retry.Backoff.RandomizationFactor; f == nil || *f != 0.25 {
		t.Errorf("Expected randomization factor to be 0.25, got %v", f)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
	if config.Logging.File != "/tmp/retryer.log" {
		t.Errorf("Expected log file to be /tmp/retryer.log, got %s", config.Logging.File)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("RETRYER_MAX_ATTEMPTS", "many")
	t.Setenv("RETRYER_BACKOFF_CAP", "forever")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for unparsable environment values")
	}
	if config.Retry.MaxAttempts != 3 {
		t.Errorf("Expected max attempts to stay 3, got %d", config.Retry.MaxAttempts)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "retryer.yaml")

	configContent := `retry:
  max_attempts: 7
  backoff:
    kind: composite_jitter
    randomization_factor: 0.3
    inner:
      kind: linear
      base: 2s
      cap: 30s
logging:
  level: warn
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Retry.MaxAttempts != 7 {
		t.Errorf("Expected max attempts to be 7, got %d", config.Retry.MaxAttempts)
	}
	if config.Retry.Backoff.Kind != BackoffCompositeJitter {
		t.Errorf("Expected composite_jitter backoff, got %s", config.Retry.Backoff.Kind)
	}
	if config.Retry.Backoff.Inner == nil {
		t.Fatal("Expected inner backoff to be loaded")
	}
	if b := config.Retry.Backoff.Inner.Base; b == nil || *b != 2*time.Second {
		t.Errorf("Expected inner base to be 2s, got %v", b)
	}
	if config.Retry.Backoff.Inner.Cap != nil {
		t.Errorf("Expected inner cap to be unset, got %v", *config.Retry.Backoff.Inner.Cap)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level to be warn, got %s", config.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "unbounded attempts",
			modify:  func(c *Config) { c.Retry.MaxAttempts = -1 },
			wantErr: false,
		},
		{
			name:    "zero attempts",
			modify:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: false,
		},
		{
			name:    "attempts below -1",
			modify:  func(c *Config) { c.Retry.MaxAttempts = -2 },
			wantErr: true,
		},
		{
			name:    "unknown backoff",
			modify:  func(c *Config) { c.Retry.Backoff.Kind = "fibonacci" },
			wantErr: true,
		},
		{
			name:    "missing backoff kind",
			modify:  func(c *Config) { c.Retry.Backoff.Kind = "" },
			wantErr: true,
		},
		{
			name:    "negative base",
			modify:  func(c *Config) { c.Retry.Backoff.Base = Duration(-time.Second) },
			wantErr: true,
		},
		{
			name: "explicit zeros",
			modify: func(c *Config) {
				c.Retry.Backoff.Base = Duration(0)
				c.Retry.Backoff.Cap = Duration(0)
				c.Retry.Backoff.RandomizationFactor = Factor(0)
			},
			wantErr: false,
		},
		{
			name:    "unset optional fields",
			modify:  func(c *Config) { c.Retry.Backoff = BackoffConfig{Kind: BackoffExponentialJitter} },
			wantErr: false,
		},
		{
			name:    "randomization factor above one",
			modify:  func(c *Config) { c.Retry.Backoff.RandomizationFactor = Factor(1.5) },
			wantErr: true,
		},
		{
			name:    "composite without inner",
			modify:  func(c *Config) { c.Retry.Backoff = BackoffConfig{Kind: BackoffCompositeJitter} },
			wantErr: true,
		},
		{
			name: "inner on non composite",
			modify: func(c *Config) {
				c.Retry.Backoff.Inner = &BackoffConfig{Kind: BackoffConstant}
			},
			wantErr: true,
		},
		{
			name: "invalid inner",
			modify: func(c *Config) {
				c.Retry.Backoff = BackoffConfig{
					Kind:  BackoffCompositeJitter,
					Inner: &BackoffConfig{Kind: BackoffLinear, Cap: Duration(-time.Second)},
				}
			},
			wantErr: true,
		},
		{
			name:    "exit code out of range",
			modify:  func(c *Config) { c.Retry.NoRetryExitCodes = []int{1, 300} },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"max-attempts":         0,
		"backoff":              "Constant",
		"timeout":              4 * time.Second,
		"randomization-factor": 0.1,
		"no-retry-exit-codes":  []int{2},
		"log-level":            "error",
	}

	config.MergeCommandLineFlags(flags)

	if config.Retry.MaxAttempts != 0 {
		t.Errorf("Expected max attempts to be 0, got %d", config.Retry.MaxAttempts)
	}
	if config.Retry.Backoff.Kind != BackoffConstant {
		t.Errorf("Expected constant backoff, got %s", config.Retry.Backoff.Kind)
	}
	if config.Retry.Backoff.Timeout != 4*time.Second {
		t.Errorf("Expected timeout to be 4s, got %v", config.Retry.Backoff.Timeout)
	}
	if len(config.Retry.NoRetryExitCodes) != 1 || config.Retry.NoRetryExitCodes[0] != 2 {
		t.Errorf("Expected no-retry exit codes [2], got %v", config.Retry.NoRetryExitCodes)
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestMergeCommandLineFlagsExplicitZero(t *testing.T) {
	config := DefaultConfig()

	config.MergeCommandLineFlags(map[string]interface{}{
		"base":                 time.Duration(0),
		"cap":                  time.Duration(0),
		"randomization-factor": 0.0,
	})

	if b := config.Retry.Backoff.Base; b == nil || *b != 0 {
		t.Errorf("Expected base to be 0, got %v", b)
	}
	if c := config.Retry.Backoff.Cap; c == nil || *c != 0 {
		t.Errorf("Expected cap to be 0, got %v", c)
	}
	if f := config.Retry.Backoff.RandomizationFactor; f == nil || *f != 0 {
		t.Errorf("Expected randomization factor to be 0, got %v", f)
	}

	// flags that were not set leave the defaults alone
	config = DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{})
	if f := config.Retry.Backoff.RandomizationFactor; f == nil || *f != 0.5 {
		t.Errorf("Expected randomization factor to stay 0.5, got %v", f)
	}
}

func TestLoadFromFileExplicitZero(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "retryer.yaml")
	configContent := `retry:
  backoff:
    kind: exponential_jitter
    base: 0s
    cap: 0s
    randomization_factor: 0
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if b := config.Retry.Backoff.Base; b == nil || *b != 0 {
		t.Errorf("Expected base to be 0, got %v", b)
	}
	if c := config.Retry.Backoff.Cap; c == nil || *c != 0 {
		t.Errorf("Expected cap to be 0, got %v", c)
	}
	if f := config.Retry.Backoff.RandomizationFactor; f == nil || *f != 0 {
		t.Errorf("Expected randomization factor to be 0, got %v", f)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Explicit zeros should be valid, got: %v", err)
	}
}
