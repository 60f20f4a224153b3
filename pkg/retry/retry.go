package retry

import (
	"context"
	"fmt"
	"time"

	errs "retryer/pkg/errors"
	"retryer/pkg/logger"
)

const (
	// Unbounded as MaxAttempts retries until the condition stops qualifying
	Unbounded = -1
	// DefaultMaxAttempts is the budget of DefaultConfig
	DefaultMaxAttempts = 3
)

// Operation is a function that returns a result and might need retrying
type Operation[T any] func() (T, error)

// Config holds retry configuration
type Config[T any] struct {
	// MaxAttempts is the attempt budget: Unbounded or any non-negative count
	MaxAttempts int
	// Condition decides whether an outcome is retried (nil means DefaultCondition)
	Condition Condition[T]
	// Backoff computes the delay between attempts (required)
	Backoff Backoff
	// Sleeper waits between attempts (nil means TimerSleeper)
	Sleeper Sleeper
	// Logger for retry attempts (nil disables logging)
	Logger logger.Logger
	// OnRetry is called before each wait; err is nil when a value triggered the retry
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig[T any]() Config[T] {
	return Config[T]{
		MaxAttempts: DefaultMaxAttempts,
		Condition:   DefaultCondition[T]{},
		Backoff:     DefaultExponentialJitter(),
		Sleeper:     TimerSleeper{},
		Logger:      logger.GetLogger(),
	}
}

// Retrier runs operations under an immutable retry policy. It is safe for
// concurrent use.
type Retrier[T any] struct {
	maxAttempts int
	condition   Condition[T]
	backoff     Backoff
	sleeper     Sleeper
	log         logger.Logger
	onRetry     func(attempt int, err error, delay time.Duration)
}

// New validates cfg and creates a Retrier
func New[T any](cfg Config[T]) (*Retrier[T], error) {
	if cfg.MaxAttempts < Unbounded {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, cfg.MaxAttempts)
	}
	if cfg.Backoff == nil {
		return nil, ErrNilBackoff
	}

	r := &Retrier[T]{
		maxAttempts: cfg.MaxAttempts,
		condition:   cfg.Condition,
		backoff:     cfg.Backoff,
		sleeper:     cfg.Sleeper,
		log:         cfg.Logger,
		onRetry:     cfg.OnRetry,
	}
	if r.condition == nil {
		r.condition = DefaultCondition[T]{}
	}
	if r.sleeper == nil {
		r.sleeper = TimerSleeper{}
	}
	if r.log == nil {
		r.log = logger.NewNopLogger()
	}
	return r, nil
}

// NewConstantRetrier creates a Retrier waiting timeout between attempts
func NewConstantRetrier[T any](timeout time.Duration, maxAttempts int, cond Condition[T]) (*Retrier[T], error) {
	backoff, err := NewConstant(timeout)
	if err != nil {
		return nil, err
	}
	return New(Config[T]{MaxAttempts: maxAttempts, Condition: cond, Backoff: backoff})
}

// NewLinearRetrier creates a Retrier whose delay grows by base up to maxDelay
func NewLinearRetrier[T any](base, maxDelay time.Duration, maxAttempts int, cond Condition[T]) (*Retrier[T], error) {
	backoff, err := NewLinear(base, maxDelay)
	if err != nil {
		return nil, err
	}
	return New(Config[T]{MaxAttempts: maxAttempts, Condition: cond, Backoff: backoff})
}

// MaxAttempts returns the attempt budget
func (r *Retrier[T]) MaxAttempts() int {
	return r.maxAttempts
}

// Backoff returns the backoff in use
func (r *Retrier[T]) Backoff() Backoff {
	return r.backoff
}

// WithMaxAttempts returns a new retrier with updated max attempts
func (r *Retrier[T]) WithMaxAttempts(maxAttempts int) (*Retrier[T], error) {
	cfg := r.config()
	cfg.MaxAttempts = maxAttempts
	return New(cfg)
}

// WithBackoff returns a new retrier with updated backoff strategy
func (r *Retrier[T]) WithBackoff(backoff Backoff) (*Retrier[T], error) {
	cfg := r.config()
	cfg.Backoff = backoff
	return New(cfg)
}

// WithCondition returns a new retrier with updated retry condition
func (r *Retrier[T]) WithCondition(cond Condition[T]) (*Retrier[T], error) {
	cfg := r.config()
	cfg.Condition = cond
	return New(cfg)
}

func (r *Retrier[T]) config() Config[T] {
	return Config[T]{
		MaxAttempts: r.maxAttempts,
		Condition:   r.condition,
		Backoff:     r.backoff,
		Sleeper:     r.sleeper,
		Logger:      r.log,
		OnRetry:     r.onRetry,
	}
}

// budgetRemains reports whether another attempt is allowed after index
// counted attempts
func (r *Retrier[T]) budgetRemains(index int) bool {
	return index < r.maxAttempts || r.maxAttempts == Unbounded
}

// Do executes op with retry logic. See the package documentation for the
// possible outcomes.
func (r *Retrier[T]) Do(ctx context.Context, op Operation[T]) (T, error) {
	var (
		zero      T
		index     int // counted attempts; frozen at 0 when unbounded
		calls     int // performed attempts
		lastValue T
		hasValue  bool
		lastErr   error
	)

	for r.budgetRemains(index) {
		value, err := op()
		calls++

		if err == nil {
			lastValue, hasValue = value, true
			if !r.condition.ShouldRetryOnValue(value) {
				if calls > 1 {
					r.log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
						"attempt": calls,
					})
				}
				return value, nil
			}
		} else {
			lastErr = err
			if !r.condition.ShouldRetryOnError(err) {
				r.log.DebugWithFields("error is not retryable", map[string]interface{}{
					"attempt":    calls,
					"error":      err.Error(),
					"error_type": string(errs.Classify(err)),
				})
				return zero, err
			}
		}

		if r.maxAttempts != Unbounded {
			index++
		}
		// no wait after the final attempt
		if !r.budgetRemains(index) {
			break
		}

		delay := r.backoff.Delay(index)

		if r.onRetry != nil {
			r.onRetry(calls, err, delay)
		}

		fields := map[string]interface{}{
			"attempt":      calls,
			"max_attempts": r.maxAttempts,
			"delay_ms":     delay.Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
			fields["error_type"] = string(errs.Classify(err))
		} else {
			fields["reason"] = "value"
		}
		r.log.WarnWithFields("retrying operation", fields)

		if waitErr := r.sleeper.Sleep(ctx, delay); waitErr != nil {
			r.log.WarnWithFields("retry cancelled", map[string]interface{}{
				"attempt": calls,
				"reason":  waitErr.Error(),
			})
			return zero, fmt.Errorf("retry cancelled after %d attempts: %w", calls, waitErr)
		}
	}

	exhausted := &ExhaustedError{
		Message:  exhaustedMessage,
		Attempts: r.maxAttempts,
		LastErr:  lastErr,
	}
	if hasValue {
		exhausted.LastValue, exhausted.HasValue = lastValue, true
	}

	fields := map[string]interface{}{
		"attempts": r.maxAttempts,
	}
	if lastErr != nil {
		fields["last_error"] = lastErr.Error()
	}
	r.log.ErrorWithFields("max retry attempts exceeded", fields)

	return zero, exhausted
}

// Do runs an operation that only reports an error under cfg
func Do(ctx context.Context, cfg Config[struct{}], op func() error) error {
	r, err := New(cfg)
	if err != nil {
		return err
	}
	_, err = r.Do(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// DoWithResult runs op under cfg
func DoWithResult[T any](ctx context.Context, cfg Config[T], op Operation[T]) (T, error) {
	r, err := New(cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.Do(ctx, op)
}
