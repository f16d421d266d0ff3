package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type migration struct {
	name string
	sql  string
}

var postgresMigrations = []migration{
	{
		name: "001_kv_entries",
		sql: `CREATE TABLE IF NOT EXISTS kv_entries (
            key        TEXT PRIMARY KEY,
            value      BYTEA NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	},
}

var sqliteMigrations = []migration{
	{
		name: "001_kv_entries",
		sql: `CREATE TABLE IF NOT EXISTS kv_entries (
            key        TEXT PRIMARY KEY,
            value      BLOB NOT NULL,
            updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
	},
}

// RunMigrations applies the key-value schema to Postgres.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	for _, m := range postgresMigrations {
		logger.Info("applying migration", zap.String("name", m.name))
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(postgresMigrations)))
	return nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	for _, m := range sqliteMigrations {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("sqlite store: migrate %s: %w", m.name, err)
		}
	}
	return nil
}
