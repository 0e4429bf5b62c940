// Package logger is a thin factory around log/slog: functional options
// for level, format and output, attribute helpers for the names used
// across the notification engine, and transparent injection of
// context-scoped values into every record.
//
// Usage:
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "notifierd"),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "notification delivered",
//	    logger.NotificationID(n.ID),
//	    logger.Channel(string(n.Channel)),
//	)
package logger
