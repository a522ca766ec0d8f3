package pg

import "time"

// Config controls the billing database pool and migrations. All values come
// from environment variables so deployments can tune them without code
// changes; load it with config.Load.
type Config struct {
	ConnectionString  string        `env:"DATABASE_URL,required"`                  // Postgres connection string.
	MaxOpenConns      int32         `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"8"` // Upper bound on pool size.
	MaxIdleConns      int32         `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"4"` // Connections kept warm between bursts.
	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"` // Connection attempts before giving up.
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`

	MigrationsPath  string `env:"DATABASE_MIGRATIONS_PATH" envDefault:"migrations"` // Directory with goose SQL migrations.
	MigrationsTable string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
