// Package pg bootstraps the PostgreSQL layer of the notification engine:
// a pgx/v5 connection pool with startup retries, goose schema migrations
// and a health check closure, plus error classification helpers shared by
// the storage implementations.
//
// Typical startup sequence:
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    panic(err)
//	}
//
// All configuration comes from environment variables; see the field tags
// on Config for names and defaults.
package pg
