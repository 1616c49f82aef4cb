package logger

import (
	"context"
	"log/slog"
)

// context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var (
	logAttrsKey      = contextKey{"log_attrs"}
	requestLoggerKey = contextKey{"request_logger"}
)

// ContextWithLogAttrs allows handlers to add attributes to the final request log.
//
// The attributes are appended to a shared slice that the RequestLogging middleware uses when it writes the "request completed" entry,
// e.g. the user_id of the authenticated user.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if attrPtr, ok := ctx.Value(logAttrsKey).(*[]slog.Attr); ok {
		*attrPtr = append(*attrPtr, attrs...)
		return ctx
	}
	// programming error - RequestLogging was not installed
	slog.Warn("ContextWithLogAttrs called on context without shared log attributes slice")
	return ctx
}

// ContextLogAttrs returns the attributes added by ContextWithLogAttrs
func ContextLogAttrs(ctx context.Context) []slog.Attr {
	if attrPtr, ok := ctx.Value(logAttrsKey).(*[]slog.Attr); ok {
		return *attrPtr
	}
	return nil
}

// ContextRequestLogger retrieves the request-scoped logger from context.
//
// Use it for intermediary log messages written before the request finishes - the entries include the request_id.
// Falls back to the default logger when RequestLogging is not installed (e.g in tests)
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ContextWithRequestLogger stores a request-scoped logger. RequestLogging does this for every request;
// it is exported for handlers invoked outside the middleware chain.
func ContextWithRequestLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerKey, logger)
}
