package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type loggerKey struct{}

// FromContext returns the logger attached to ctx, or the default logger.
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// With derives a logger carrying keyvals from the one in ctx and returns it
// along with a context holding it. Analysis of one file uses this so that
// dispatcher records name the file.
func With(ctx context.Context, keyvals ...any) (context.Context, *log.Logger) {
	logger := FromContext(ctx).With(keyvals...)
	return WithLogger(ctx, logger), logger
}
