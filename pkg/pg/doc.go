// Package pg bootstraps the PostgreSQL layer the billing engine persists to:
// a pgx/v5 connection pool with startup retry, goose schema migrations
// routed through slog, a healthcheck closure, and error classification
// helpers for not-found, duplicate-key and foreign-key failures.
//
// Typical startup:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		panic(err)
//	}
//
// The optimistic-concurrency contract of the billing store depends on
// IsNotFoundError distinguishing a zero-row conditional update from a real
// query failure; keep its semantics stable.
package pg
