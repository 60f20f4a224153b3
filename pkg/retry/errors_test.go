package retry

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExhaustedErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *ExhaustedError
		expected string
	}{
		{
			name:     "nothing recorded",
			err:      &ExhaustedError{Message: exhaustedMessage, Attempts: 0},
			expected: "exceeded number of retries: maxAttempts=0, lastReturnValue=none, lastException=none",
		},
		{
			name:     "last error only",
			err:      &ExhaustedError{Message: exhaustedMessage, Attempts: 3, LastErr: io.ErrUnexpectedEOF},
			expected: "exceeded number of retries: maxAttempts=3, lastReturnValue=none, lastException=unexpected EOF",
		},
		{
			name:     "value and error",
			err:      &ExhaustedError{Message: exhaustedMessage, Attempts: 2, LastValue: 7, LastErr: errors.New("boom")},
			expected: "exceeded number of retries: maxAttempts=2, lastReturnValue=7, lastException=boom",
		},
		{
			name:     "recorded nil value",
			err:      &ExhaustedError{Message: exhaustedMessage, Attempts: 2, HasValue: true},
			expected: "exceeded number of retries: maxAttempts=2, lastReturnValue=<nil>, lastException=none",
		},
		{
			name:     "nil pointer value",
			err:      &ExhaustedError{Message: exhaustedMessage, Attempts: 2, LastValue: (*int)(nil), HasValue: true},
			expected: "exceeded number of retries: maxAttempts=2, lastReturnValue=<nil>, lastException=none",
		},
		{
			name:     "zero value is still a value",
			err:      &ExhaustedError{Message: "gave up", Attempts: 1, LastValue: ""},
			expected: "gave up: maxAttempts=1, lastReturnValue=, lastException=none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.expected)
		})
	}
}

func TestExhaustedErrorMatching(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = fmt.Errorf("fetch: %w", &ExhaustedError{
		Message:  exhaustedMessage,
		Attempts: 3,
		LastErr:  cause,
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNilBackoff)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Same(t, cause, exhausted.LastErr)
}

func TestExhaustedErrorWithoutCause(t *testing.T) {
	err := &ExhaustedError{Message: exhaustedMessage}

	assert.NoError(t, err.Unwrap())
	assert.ErrorIs(t, err, ErrExhausted)
}
