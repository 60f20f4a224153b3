package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backoff kinds understood by the policy builder
const (
	BackoffConstant          = "constant"
	BackoffLinear            = "linear"
	BackoffExponential       = "exponential"
	BackoffExponentialJitter = "exponential_jitter"
	BackoffCompositeJitter   = "composite_jitter"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv
const EnvPrefix = "RETRYER_"

// Config holds all configuration options for retryer
type Config struct {
	// Retry policy
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RetryConfig describes the attempt budget and backoff of a retrier
type RetryConfig struct {
	// MaxAttempts is the attempt budget, -1 means unbounded
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts" validate:"gte=-1"`
	Backoff     BackoffConfig `yaml:"backoff" json:"backoff"`
	// NoRetryExitCodes lists process exit codes that stop `retryer exec` immediately
	NoRetryExitCodes []int `yaml:"no_retry_exit_codes,omitempty" json:"no_retry_exit_codes,omitempty" validate:"dive,gte=0,lte=255"`
}

// BackoffConfig describes one backoff strategy. Inner is only used by
// composite_jitter, which wraps another strategy.
//
// Base, Cap and RandomizationFactor are optional: nil selects the default,
// while an explicit zero is a valid setting of its own.
type BackoffConfig struct {
	Kind                string         `yaml:"kind" json:"kind" validate:"required,oneof=constant linear exponential exponential_jitter composite_jitter"`
	Timeout             time.Duration  `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"gte=0"`
	Base                *time.Duration `yaml:"base,omitempty" json:"base,omitempty" validate:"omitempty,gte=0"`
	Cap                 *time.Duration `yaml:"cap,omitempty" json:"cap,omitempty" validate:"omitempty,gte=0"`
	RandomizationFactor *float64       `yaml:"randomization_factor,omitempty" json:"randomization_factor,omitempty" validate:"omitempty,gte=0,lte=1"`
	Inner               *BackoffConfig `yaml:"inner,omitempty" json:"inner,omitempty"`
}

// Duration returns a pointer to d for the optional duration fields of BackoffConfig
func Duration(d time.Duration) *time.Duration {
	return &d
}

// Factor returns a pointer to f for BackoffConfig.RandomizationFactor
func Factor(f float64) *float64 {
	return &f
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"gte=0"`
	MaxAge     int    `yaml:"max_age" json:"max_age" validate:"gte=0"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml keys instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			Backoff: BackoffConfig{
				Kind:                BackoffExponentialJitter,
				Base:                Duration(1 * time.Second),
				Cap:                 Duration(1 * time.Minute),
				RandomizationFactor: Factor(0.5),
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_ATTEMPTS: %w", EnvPrefix, err))
		} else {
			c.Retry.MaxAttempts = n
		}
	}

	if v := os.Getenv(EnvPrefix + "BACKOFF"); v != "" {
		c.Retry.Backoff.Kind = strings.ToLower(v)
	}

	durations := map[string]func(time.Duration){
		"BACKOFF_TIMEOUT": func(d time.Duration) { c.Retry.Backoff.Timeout = d },
		"BACKOFF_BASE":    func(d time.Duration) { c.Retry.Backoff.Base = &d },
		"BACKOFF_CAP":     func(d time.Duration) { c.Retry.Backoff.Cap = &d },
	}
	for name, set := range durations {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			continue
		}
		set(d)
	}

	if v := os.Getenv(EnvPrefix + "RANDOMIZATION_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRANDOMIZATION_FACTOR: %w", EnvPrefix, err))
		} else {
			c.Retry.Backoff.RandomizationFactor = &f
		}
	}

	// Logging
	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv(EnvPrefix + "LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SearchPaths lists the config file locations in order of precedence
func SearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		"retryer.yaml",
		"retryer.yml",
		".retryer.yaml",
		".retryer.yml",
		filepath.Join(home, ".config", "retryer", "config.yaml"),
		filepath.Join(home, ".config", "retryer", "config.yml"),
		filepath.Join(home, ".retryer.yaml"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fmt.Errorf("%s: value %v violates %q", fe.Namespace(), fe.Value(), constraint(fe)))
		}
	}

	errs = append(errs, c.Retry.Backoff.check("retry.backoff")...)

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// check performs the cross-field checks struct tags cannot express
func (b *BackoffConfig) check(path string) []error {
	var errs []error
	switch b.Kind {
	case BackoffCompositeJitter:
		if b.Inner == nil {
			errs = append(errs, fmt.Errorf("%s: composite_jitter requires an inner backoff", path))
		} else {
			errs = append(errs, b.Inner.check(path+".inner")...)
		}
	default:
		if b.Inner != nil {
			errs = append(errs, fmt.Errorf("%s: inner backoff is only valid for composite_jitter", path))
		}
	}
	return errs
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if maxAttempts, ok := flags["max-attempts"].(int); ok {
		c.Retry.MaxAttempts = maxAttempts
	}
	if kind, ok := flags["backoff"].(string); ok && kind != "" {
		c.Retry.Backoff.Kind = strings.ToLower(kind)
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok {
		c.Retry.Backoff.Timeout = timeout
	}
	if base, ok := flags["base"].(time.Duration); ok {
		c.Retry.Backoff.Base = &base
	}
	if maxDelay, ok := flags["cap"].(time.Duration); ok {
		c.Retry.Backoff.Cap = &maxDelay
	}
	if factor, ok := flags["randomization-factor"].(float64); ok {
		c.Retry.Backoff.RandomizationFactor = &factor
	}
	if codes, ok := flags["no-retry-exit-codes"].([]int); ok && len(codes) > 0 {
		c.Retry.NoRetryExitCodes = codes
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".retryer.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
