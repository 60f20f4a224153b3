// Package logger provides the structured logging interface used across retryer.
//
// It wraps zerolog behind a small Logger interface:
// - Levels: Debug, Info, Warn, Error, Fatal
// - Structured fields via WithField/WithFields/WithError
// - Colored console output on stderr
// - Optional file output rotated by lumberjack
// - A global logger for the CLI, a no-op logger for libraries and a
//   capturing TestLogger for tests
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level:      "info",
//	    File:       "/var/log/retryer.log",
//	    MaxSize:    100,
//	    MaxBackups: 3,
//	}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	logger.Info("retryer starting")
//	logger.WithField("attempt", 2).Warn("retrying operation")
//	logger.WithError(err).Error("retries exhausted")
//
// Rotation options (LoggingConfig):
// - MaxSize: megabytes before the file is rotated
// - MaxBackups: rotated files to keep
// - MaxAge: days to keep rotated files
// - Compress: gzip rotated files
package logger
