package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeForStatusCode(t *testing.T) {
	tests := []struct {
		code     int
		expected ErrorType
	}{
		{0, ErrorTypeNetwork},
		{200, ErrorTypeUnknown},
		{400, ErrorTypeClient},
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{404, ErrorTypeNotFound},
		{409, ErrorTypeClient},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeForStatusCode(tt.code))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeParsing))
	assert.False(t, IsRetryable(ErrorTypeClient))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}

func TestIsRetryableStatusCode(t *testing.T) {
	for _, code := range []int{0, 429, 500, 502, 503, 504, 599} {
		assert.True(t, IsRetryableStatusCode(code), "code %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 418} {
		assert.False(t, IsRetryableStatusCode(code), "code %d", code)
	}
}

func TestWrapAndClassify(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrorTypeNetwork, 0, "read body")

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, ErrorTypeNetwork, Classify(fmt.Errorf("outer: %w", err)))
	assert.Equal(t, ErrorTypeUnknown, Classify(errors.New("plain")))
	assert.Equal(t, "network error (code 0): read body: unexpected EOF", err.Error())
	assert.Equal(t, "auth error (code 401): denied", New(ErrorTypeAuth, 401, "denied").Error())
}
