package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingsync/pkg/config"
)

// Each test uses its own struct type because Load caches per type.

func TestLoadDefaults(t *testing.T) {
	type dedupConfig struct {
		KeyPrefix string        `env:"TEST_DEDUP_KEY_PREFIX" envDefault:"billing:event:"`
		TTL       time.Duration `env:"TEST_DEDUP_TTL" envDefault:"72h"`
	}

	var cfg dedupConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "billing:event:", cfg.KeyPrefix)
	assert.Equal(t, 72*time.Hour, cfg.TTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	type dbConfig struct {
		URL      string `env:"TEST_BILLING_DB_URL"`
		MaxConns int32  `env:"TEST_BILLING_DB_MAX_CONNS" envDefault:"8"`
	}

	t.Setenv("TEST_BILLING_DB_URL", "postgres://localhost:5432/billing")
	t.Setenv("TEST_BILLING_DB_MAX_CONNS", "16")

	var cfg dbConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "postgres://localhost:5432/billing", cfg.URL)
	assert.Equal(t, int32(16), cfg.MaxConns)
}

func TestLoadRequiredMissing(t *testing.T) {
	type strictConfig struct {
		Secret string `env:"TEST_BILLING_REQUIRED_SECRET,required"`
	}

	var cfg strictConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNilPointer(t *testing.T) {
	err := config.Load[struct{}](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoadCachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_BILLING_CACHED_VALUE" envDefault:"first"`
	}

	t.Setenv("TEST_BILLING_CACHED_VALUE", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	require.Equal(t, "first", first.Value)

	// A changed environment must not alter the already-loaded value.
	t.Setenv("TEST_BILLING_CACHED_VALUE", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}
