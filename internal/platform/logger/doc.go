// Package logger provides structured logging for the application using
// log/slog. It configures the process-wide handler from config and carries
// request-scoped loggers through context.Context.
package logger
