// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package and provides a simple interface for
// the command-line tooling; the library packages themselves never log.
package logger
