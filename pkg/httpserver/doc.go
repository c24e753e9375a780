// Package httpserver wraps net/http with graceful shutdown on context
// cancellation or SIGINT/SIGTERM, configured through functional options.
package httpserver
