package persistence

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/config"
)

// Open builds the backend named by cfg.Store.Driver, namespaced with the
// configured key prefix. The caller owns Close.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (KV, error) {
	var (
		kv  KV
		err error
	)

	switch cfg.Store.Driver {
	case config.DriverMemory, "":
		kv = NewMemoryKV()
	case config.DriverFile:
		kv, err = NewFileKV(cfg.Store.Path)
	case config.DriverSQLite:
		path := cfg.Store.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "tickets.db")
		}
		kv, err = NewSQLiteKV(ctx, path)
	case config.DriverRedis:
		kv = NewRedis(ctx, cfg.Redis, logger)
	case config.DriverPostgres:
		kv, err = openPostgres(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("persistence: unknown driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("key-value store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("prefix", cfg.Store.KeyPrefix))
	return WithPrefix(kv, cfg.Store.KeyPrefix), nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (KV, error) {
	pg, err := NewPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres store: connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	kv, err := NewPostgresKV(pg)
	if err != nil {
		pg.Close()
		return nil, err
	}
	return kv, nil
}
