package retry

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// MaxDuration is the largest representable delay
const MaxDuration = time.Duration(math.MaxInt64)

// Defaults used by the convenience constructors
const (
	DefaultBaseDelay           = 1 * time.Second
	DefaultRandomizationFactor = 0.5
)

// Backoff maps the number of completed attempts to the delay before the next one
type Backoff interface {
	// Delay returns the wait after the given attempt. Implementations must be
	// safe for concurrent use and never return a negative duration.
	Delay(attempt int) time.Duration
}

// BackoffFunc adapts a function to the Backoff interface
type BackoffFunc func(attempt int) time.Duration

// Delay calls f(attempt)
func (f BackoffFunc) Delay(attempt int) time.Duration {
	return f(attempt)
}

// RandSource supplies the randomness of jittered backoffs. *rand.Rand
// satisfies it but is not safe for concurrent use on its own.
type RandSource interface {
	// Int63n returns a non-negative pseudo-random number in [0,n)
	Int63n(n int64) int64
}

// globalRand draws from the goroutine-safe math/rand top-level source
type globalRand struct{}

func (globalRand) Int63n(n int64) int64 { return rand.Int63n(n) }

// Constant waits the same timeout after every attempt
type Constant struct {
	timeout time.Duration
}

// NewConstant creates a constant backoff
func NewConstant(timeout time.Duration) (*Constant, error) {
	if timeout < 0 {
		return nil, fmt.Errorf("%w: timeout is %v", ErrNegativeDuration, timeout)
	}
	return &Constant{timeout: timeout}, nil
}

// Delay returns the configured timeout regardless of attempt
func (c *Constant) Delay(int) time.Duration {
	return c.timeout
}

// Timeout returns the configured timeout
func (c *Constant) Timeout() time.Duration {
	return c.timeout
}

// Linear grows the delay by base after every attempt, up to maxDelay
type Linear struct {
	base     time.Duration
	maxDelay time.Duration
}

// NewLinear creates a linear backoff computing min(maxDelay, base*attempt)
func NewLinear(base, maxDelay time.Duration) (*Linear, error) {
	if err := checkDurations(base, maxDelay); err != nil {
		return nil, err
	}
	return &Linear{base: base, maxDelay: maxDelay}, nil
}

// Delay returns min(maxDelay, base*attempt). Attempts below one wait nothing.
func (l *Linear) Delay(attempt int) time.Duration {
	if attempt <= 0 || l.base == 0 {
		return 0
	}
	n := time.Duration(attempt)
	// base*n would exceed maxDelay (and possibly overflow)
	if l.base > l.maxDelay/n {
		return l.maxDelay
	}
	return l.base * n
}

// Base returns the per-attempt increment
func (l *Linear) Base() time.Duration { return l.base }

// MaxDelay returns the cap
func (l *Linear) MaxDelay() time.Duration { return l.maxDelay }

// Exponential doubles the delay after every attempt, up to maxDelay
type Exponential struct {
	base     time.Duration
	maxDelay time.Duration
}

// NewExponential creates an exponential backoff computing min(maxDelay, base*2^(attempt-1))
func NewExponential(base, maxDelay time.Duration) (*Exponential, error) {
	if err := checkDurations(base, maxDelay); err != nil {
		return nil, err
	}
	return &Exponential{base: base, maxDelay: maxDelay}, nil
}

// ExponentialCapped creates an exponential backoff starting at DefaultBaseDelay
func ExponentialCapped(maxDelay time.Duration) (*Exponential, error) {
	return NewExponential(DefaultBaseDelay, maxDelay)
}

// Delay returns min(maxDelay, base*2^(attempt-1)). Attempts below one follow
// the same formula with a negative exponent, rounded half up.
func (e *Exponential) Delay(attempt int) time.Duration {
	if e.base == 0 {
		return 0
	}

	if attempt <= 0 {
		shift := 1 - attempt
		if shift >= 63 {
			return 0
		}
		halved := e.base>>shift + (e.base>>(shift-1))&1
		return min(halved, e.maxDelay)
	}

	exp := attempt - 1
	if exp >= 63 || e.base > e.maxDelay>>exp {
		return e.maxDelay
	}
	return e.base << exp
}

// Base returns the delay after the first attempt
func (e *Exponential) Base() time.Duration { return e.base }

// MaxDelay returns the cap
func (e *Exponential) MaxDelay() time.Duration { return e.maxDelay }

// CompositeJitter randomizes the delay of another backoff. For an inner
// delay w and randomization factor r the result is drawn uniformly from
// [w*(1-r), w].
type CompositeJitter struct {
	inner  Backoff
	factor float64
	rand   RandSource
}

// JitterOption configures a CompositeJitter
type JitterOption func(*CompositeJitter)

// WithRandSource replaces the random source, mostly for deterministic tests.
// The source must be safe for concurrent use if the backoff is shared.
func WithRandSource(src RandSource) JitterOption {
	return func(j *CompositeJitter) {
		if src != nil {
			j.rand = src
		}
	}
}

// NewCompositeJitter wraps inner with jitter of the given randomization factor
func NewCompositeJitter(inner Backoff, randomizationFactor float64, opts ...JitterOption) (*CompositeJitter, error) {
	if inner == nil {
		return nil, ErrNilBackoff
	}
	// the negated form also rejects NaN
	if !(randomizationFactor >= 0 && randomizationFactor <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRandomizationFactor, randomizationFactor)
	}

	j := &CompositeJitter{
		inner:  inner,
		factor: randomizationFactor,
		rand:   globalRand{},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// NewExponentialJitter is NewCompositeJitter over NewExponential(base, maxDelay)
func NewExponentialJitter(base, maxDelay time.Duration, randomizationFactor float64, opts ...JitterOption) (*CompositeJitter, error) {
	exp, err := NewExponential(base, maxDelay)
	if err != nil {
		return nil, err
	}
	return NewCompositeJitter(exp, randomizationFactor, opts...)
}

// DefaultExponentialJitter starts at DefaultBaseDelay, is effectively
// uncapped and uses DefaultRandomizationFactor
func DefaultExponentialJitter() *CompositeJitter {
	return &CompositeJitter{
		inner:  &Exponential{base: DefaultBaseDelay, maxDelay: MaxDuration},
		factor: DefaultRandomizationFactor,
		rand:   globalRand{},
	}
}

// Delay draws from [w*(1-r), w] where w is the inner delay
func (j *CompositeJitter) Delay(attempt int) time.Duration {
	w := j.inner.Delay(attempt)
	if w <= 0 || j.factor == 0 {
		return w
	}

	var low time.Duration
	lowF := float64(w) * (1 - j.factor)
	if lowF >= float64(w) {
		low = w
	} else {
		low = time.Duration(lowF)
	}

	span := int64(w - low)
	if span == math.MaxInt64 {
		// [0, MaxInt64] has no Int63n bound; the top value is dropped
		return low + time.Duration(j.rand.Int63n(span))
	}
	return low + time.Duration(j.rand.Int63n(span+1))
}

// Inner returns the wrapped backoff
func (j *CompositeJitter) Inner() Backoff { return j.inner }

// RandomizationFactor returns r
func (j *CompositeJitter) RandomizationFactor() float64 { return j.factor }

func checkDurations(base, maxDelay time.Duration) error {
	if base < 0 {
		return fmt.Errorf("%w: base is %v", ErrNegativeDuration, base)
	}
	if maxDelay < 0 {
		return fmt.Errorf("%w: max delay is %v", ErrNegativeDuration, maxDelay)
	}
	return nil
}
