// Package policy turns a loaded configuration into a ready-to-use retrier.
//
// Unset optional fields of a BackoffConfig fall back to the package defaults
// of retry: a nil Base becomes retry.DefaultBaseDelay, a nil Cap means
// uncapped and a jitter kind without a randomization factor uses
// retry.DefaultRandomizationFactor. Explicit zeros are kept, so r=0 disables
// jitter and a zero Base or Cap yields zero delays.
package policy

import (
	"fmt"
	"strings"
	"time"

	"retryer/pkg/config"
	"retryer/pkg/logger"
	"retryer/pkg/retry"
)

// Backoff builds the strategy described by cfg
func Backoff(cfg config.BackoffConfig) (retry.Backoff, error) {
	base, maxDelay, factor := withDefaults(cfg)

	var (
		b   retry.Backoff
		err error
	)
	switch strings.ToLower(cfg.Kind) {
	case config.BackoffConstant:
		b, err = retry.NewConstant(cfg.Timeout)
	case config.BackoffLinear:
		b, err = retry.NewLinear(base, maxDelay)
	case config.BackoffExponential:
		b, err = retry.NewExponential(base, maxDelay)
	case config.BackoffExponentialJitter:
		b, err = retry.NewExponentialJitter(base, maxDelay, factor)
	case config.BackoffCompositeJitter:
		if cfg.Inner == nil {
			return nil, fmt.Errorf("backoff %s: inner backoff is required", cfg.Kind)
		}
		inner, innerErr := Backoff(*cfg.Inner)
		if innerErr != nil {
			return nil, fmt.Errorf("backoff %s: %w", cfg.Kind, innerErr)
		}
		b, err = retry.NewCompositeJitter(inner, factor)
	default:
		return nil, fmt.Errorf("unknown backoff kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("backoff %s: %w", cfg.Kind, err)
	}
	return b, nil
}

// NewRetrier builds a retrier from the retry section of cfg. A nil cond
// retries every error; a nil log disables logging.
func NewRetrier[T any](cfg *config.Config, cond retry.Condition[T], log logger.Logger) (*retry.Retrier[T], error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	backoff, err := Backoff(cfg.Retry.Backoff)
	if err != nil {
		return nil, err
	}

	return retry.New(retry.Config[T]{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Condition:   cond,
		Backoff:     backoff,
		Logger:      log,
	})
}

// Schedule returns the first n delays a retrier with the given attempt
// budget would wait, as produced by b. A finite budget asks b for attempts
// 1..n; an unbounded budget never advances the attempt index, so every
// wait is b.Delay(0).
func Schedule(b retry.Backoff, maxAttempts, n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	for attempt := 1; attempt <= n; attempt++ {
		index := attempt
		if maxAttempts == retry.Unbounded {
			index = 0
		}
		delays = append(delays, b.Delay(index))
	}
	return delays
}

// Describe renders cfg in a compact human readable form, for example
// "exponential_jitter(base=1s, cap=1m0s, r=0.5)"
func Describe(cfg config.BackoffConfig) string {
	base, maxDelay, factor := withDefaults(cfg)
	capText := "none"
	if maxDelay != retry.MaxDuration {
		capText = maxDelay.String()
	}

	switch strings.ToLower(cfg.Kind) {
	case config.BackoffConstant:
		return fmt.Sprintf("%s(timeout=%s)", cfg.Kind, cfg.Timeout)
	case config.BackoffLinear, config.BackoffExponential:
		return fmt.Sprintf("%s(base=%s, cap=%s)", cfg.Kind, base, capText)
	case config.BackoffExponentialJitter:
		return fmt.Sprintf("%s(base=%s, cap=%s, r=%g)", cfg.Kind, base, capText, factor)
	case config.BackoffCompositeJitter:
		inner := "?"
		if cfg.Inner != nil {
			inner = Describe(*cfg.Inner)
		}
		return fmt.Sprintf("%s(%s, r=%g)", cfg.Kind, inner, factor)
	default:
		return cfg.Kind
	}
}

func withDefaults(cfg config.BackoffConfig) (base, maxDelay time.Duration, factor float64) {
	base, maxDelay, factor = retry.DefaultBaseDelay, retry.MaxDuration, retry.DefaultRandomizationFactor
	if cfg.Base != nil {
		base = *cfg.Base
	}
	if cfg.Cap != nil {
		maxDelay = *cfg.Cap
	}
	if cfg.RandomizationFactor != nil {
		factor = *cfg.RandomizationFactor
	}
	return base, maxDelay, factor
}
