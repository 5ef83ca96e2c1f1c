// Package logger builds configured slog.Logger instances for the service.
//
// The factory produces JSON logs for production and human-readable text logs
// for development, and supports context extractors that inject request-scoped
// attributes (request ID, user ID) into every record.
package logger
