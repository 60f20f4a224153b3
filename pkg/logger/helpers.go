package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogCommandAttempt logs the outcome of one run of a child process
func LogCommandAttempt(log Logger, command string, attempt int, exitCode int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"command":     command,
		"attempt":     attempt,
		"exit_code":   exitCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case err != nil && exitCode < 0:
		log.WithError(err).ErrorWithFields("Command could not be started", fields)
	case exitCode != 0:
		log.WarnWithFields("Command failed", fields)
	default:
		log.InfoWithFields("Command succeeded", fields)
	}
}

// LogSchedule logs a computed delay schedule at debug level
func LogSchedule(log Logger, backoff string, delays []time.Duration) {
	ms := make([]int, len(delays))
	for i, d := range delays {
		ms[i] = int(d.Milliseconds())
	}
	log.DebugWithFields("Delay schedule computed", map[string]interface{}{
		"backoff":   backoff,
		"delays_ms": ms,
	})
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
