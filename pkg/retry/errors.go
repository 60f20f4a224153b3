package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted matches every *ExhaustedError with errors.Is
	ErrExhausted = errors.New("retry: attempts exhausted")

	ErrInvalidMaxAttempts         = errors.New("retry: maxAttempts must be either -1 or any other non-negative int")
	ErrNilBackoff                 = errors.New("retry: backoff may not be nil")
	ErrNegativeDuration           = errors.New("retry: duration must be >= 0")
	ErrInvalidRandomizationFactor = errors.New("retry: randomization factor must be within [0, 1]")
)

// exhaustedMessage is the Message of every ExhaustedError built by a Retrier
const exhaustedMessage = "exceeded number of retries"

// ExhaustedError is returned when the attempt budget is consumed while the
// last outcome still qualified for a retry
type ExhaustedError struct {
	Message string
	// Attempts is the budget that was consumed
	Attempts int
	// LastValue is the value of the most recent successful call
	LastValue any
	// HasValue reports that a call succeeded, so a nil LastValue is a value
	// of its own rather than a missing one
	HasValue bool
	// LastErr is the most recent error, nil if none; it is also the cause
	LastErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: maxAttempts=%d, lastReturnValue=%s, lastException=%s",
		e.Message, e.Attempts, e.describeValue(), describeError(e.LastErr))
}

// Unwrap returns the last error so errors.Is/As reach the cause
func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// Is reports whether target is ErrExhausted
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// describeValue prints "none" only when no value was recorded; a recorded
// nil renders as "<nil>" whether it is a nil interface or a nil pointer
func (e *ExhaustedError) describeValue() string {
	if e.LastValue == nil && !e.HasValue {
		return "none"
	}
	return fmt.Sprintf("%v", e.LastValue)
}

func describeError(err error) string {
	if err == nil {
		return "none"
	}
	return err.Error()
}
