package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	loaded = make(map[string]any)

	dotenvOnce sync.Once
)

// Load populates cfg from environment variables using the struct's `env`
// tags. The first call loads a .env file if one exists (missing files are
// fine), and each config type is parsed once per process: later calls for
// the same type return the cached value so every component observes the
// same configuration.
//
//	type DedupConfig struct {
//		KeyPrefix string        `env:"BILLING_DEDUP_KEY_PREFIX" envDefault:"billing:event:"`
//		TTL       time.Duration `env:"BILLING_DEDUP_TTL" envDefault:"72h"`
//	}
//
//	var cfg DedupConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	key := typeName[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := loaded[key]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	// Store a copy so callers cannot mutate the cached value.
	loaded[key] = *cfg
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeName[T any]() string {
	t := reflect.TypeOf(*new(T))
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
