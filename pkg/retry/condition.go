package retry

import (
	"context"
	"errors"

	errs "retryer/pkg/errors"
)

// Condition decides whether another attempt should follow an outcome
type Condition[T any] interface {
	// ShouldRetryOnError is consulted when the operation returned an error
	ShouldRetryOnError(err error) bool
	// ShouldRetryOnValue is consulted when the operation returned a value
	ShouldRetryOnValue(value T) bool
}

// DefaultCondition retries on every error and never on a returned value
type DefaultCondition[T any] struct{}

// ShouldRetryOnError always returns true
func (DefaultCondition[T]) ShouldRetryOnError(error) bool { return true }

// ShouldRetryOnValue always returns false
func (DefaultCondition[T]) ShouldRetryOnValue(T) bool { return false }

// ConditionFuncs adapts plain functions to a Condition. A nil function
// answers like DefaultCondition.
type ConditionFuncs[T any] struct {
	OnError func(err error) bool
	OnValue func(value T) bool
}

// ShouldRetryOnError calls OnError, retrying every error when it is nil
func (c ConditionFuncs[T]) ShouldRetryOnError(err error) bool {
	if c.OnError == nil {
		return true
	}
	return c.OnError(err)
}

// ShouldRetryOnValue calls OnValue, retrying no value when it is nil
func (c ConditionFuncs[T]) ShouldRetryOnValue(value T) bool {
	if c.OnValue == nil {
		return false
	}
	return c.OnValue(value)
}

// RetryIf returns a Condition that retries errors matching pred and never retries values
func RetryIf[T any](pred func(error) bool) Condition[T] {
	return ConditionFuncs[T]{OnError: pred}
}

// RetryOnValue returns a Condition that retries every error and the values matching pred
func RetryOnValue[T any](pred func(T) bool) Condition[T] {
	return ConditionFuncs[T]{OnValue: pred}
}

// HTTPCondition retries transient faults and gives up on client errors.
// Values are never retried.
type HTTPCondition[T any] struct{}

// ShouldRetryOnError reports whether err is transient, see IsTransient
func (HTTPCondition[T]) ShouldRetryOnError(err error) bool { return IsTransient(err) }

// ShouldRetryOnValue always returns false
func (HTTPCondition[T]) ShouldRetryOnValue(T) bool { return false }

// IsTransient reports whether err is worth another attempt. Classified
// errors are judged by their status code, or by their type when no code is
// set; context cancellation is never transient; anything else is.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code != 0 {
			return errs.IsRetryableStatusCode(apiErr.Code)
		}
		return errs.IsRetryable(apiErr.Type)
	}

	return true
}
