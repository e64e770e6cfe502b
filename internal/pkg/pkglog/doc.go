// Package pkglog configures the process-wide slog logger.
//
// Records are written as JSON to stdout at the configured level, and every
// record logged with a request context carries that request's correlation ID.
package pkglog
