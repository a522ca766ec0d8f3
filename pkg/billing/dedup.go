package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupConfig configures the Redis event deduplicator.
type DedupConfig struct {
	KeyPrefix string        `env:"BILLING_DEDUP_KEY_PREFIX" envDefault:"billing:event:"` // KeyPrefix namespaces dedup keys in a shared Redis.
	TTL       time.Duration `env:"BILLING_DEDUP_TTL" envDefault:"72h"`                   // TTL bounds memory; providers stop redelivering long before it expires.
}

// RedisDeduplicator marks provider event ids as processed with SETNX so that
// at-least-once deliveries short-circuit before touching the database.
type RedisDeduplicator struct {
	client redis.UniversalClient
	cfg    DedupConfig
}

// NewRedisDeduplicator creates a deduplicator backed by the given client.
// Panics if client is nil to fail fast during initialization.
func NewRedisDeduplicator(client redis.UniversalClient, cfg DedupConfig) *RedisDeduplicator {
	if client == nil {
		panic("billing: redis client is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "billing:event:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 72 * time.Hour
	}
	return &RedisDeduplicator{client: client, cfg: cfg}
}

// MarkProcessed returns true the first time an event id is seen within the
// TTL window. SETNX makes the check-and-mark atomic across instances.
func (d *RedisDeduplicator) MarkProcessed(ctx context.Context, providerEventID string) (bool, error) {
	if providerEventID == "" {
		return false, ErrMissingEventID
	}

	first, err := d.client.SetNX(ctx, d.cfg.KeyPrefix+providerEventID, 1, d.cfg.TTL).Result()
	if err != nil {
		return false, errors.Join(fmt.Errorf("billing: dedup mark failed for event %s", providerEventID), err)
	}
	return first, nil
}

// Unmark deletes the event id so a later redelivery is processed again.
// Called when the event failed to apply after this instance claimed it;
// without the delete the provider's retry would be swallowed for the whole
// TTL window.
func (d *RedisDeduplicator) Unmark(ctx context.Context, providerEventID string) error {
	if providerEventID == "" {
		return ErrMissingEventID
	}

	if err := d.client.Del(ctx, d.cfg.KeyPrefix+providerEventID).Err(); err != nil {
		return errors.Join(fmt.Errorf("billing: dedup unmark failed for event %s", providerEventID), err)
	}
	return nil
}
