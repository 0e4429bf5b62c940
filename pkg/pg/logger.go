package pg

import "context"

// logger is the subset of slog used by the migration runner. Declaring it
// here keeps the package free of a hard slog dependency in its API.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
