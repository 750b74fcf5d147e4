package pg

import "context"

// logger is the subset of *slog.Logger used to report applied migrations.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
