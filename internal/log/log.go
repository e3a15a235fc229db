// Package log builds the slog loggers shared by the CLI and the server.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// NewHandler sets up a text slog.Handler writing to w, tagged with the
// service name. Debug records are emitted only when verbose is set.
func NewHandler(w io.Writer, name string, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return handler.WithAttrs([]slog.Attr{slog.String("service", name)})
}

// New returns a logger writing to stderr.
func New(name string, verbose bool) *slog.Logger {
	return slog.New(NewHandler(os.Stderr, name, verbose))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type ctxKey struct{}

// IntoContext adds a logger to a context. Use FromContext to
// pull the logger out.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or slog.Default when
// ctx is nil or carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
