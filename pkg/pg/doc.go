// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// startup retries, goose schema migrations, and a health check closure. It is
// deliberately thin; repositories talk to pgx directly.
//
// All settings come from environment variables via the Config struct. The
// usual startup sequence is:
//
//	pool, err := pg.Connect(ctx, cfg)
//	...
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil { ... }
//
// IsNotFoundError and IsDuplicateKeyError classify the two pgx errors the
// repositories care about without leaking driver types upward.
package pg
