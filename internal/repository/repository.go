package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/jaakkos/storefront/internal/app"
	"github.com/jaakkos/storefront/internal/config"
	"github.com/jaakkos/storefront/internal/repository/memory"
	"github.com/jaakkos/storefront/internal/repository/redis"
	"github.com/jaakkos/storefront/internal/repository/sqlite"
)

// Store is a KeyValueStore that holds a connection.
type Store interface {
	app.KeyValueStore
	io.Closer
}

var (
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*redis.Store)(nil)
	_ Store = (*memory.Store)(nil)
)

// NewKeyValueStore opens the backend selected by cfg.Storage.Backend, scoped to
// cfg.Profile. The SQLite path is cfg.StateFilePath() (default
// ~/.config/storefront/state.sqlite).
func NewKeyValueStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite, "":
		s, err := sqlite.New(cfg.StateFilePath(), cfg.Profile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		s, err := redis.New(ctx, redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		}, cfg.Profile)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
