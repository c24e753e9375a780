// Package logger builds configured slog.Logger instances with environment
// aware defaults: JSON output at info level for production, text output at
// debug level for development.
package logger
