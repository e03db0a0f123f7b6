package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/samims/sitepulse/internal/config"
)

const settingsTable = "plugin_settings"

// Open connects the settings backend selected by cfg.DatabaseDriver and makes
// sure the schema exists.
func Open(ctx context.Context, cfg *config.Config) (SettingsStorage, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		ps := NewPostgresStorage(pool)
		if err := ps.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return ps, nil
	case config.DriverSQLite:
		db, err := ConnectSQLite(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		ss := NewSQLiteStorage(db)
		if err := ss.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return ss, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// ConnectSQLite opens a SQLite file through the pure-Go modernc driver.
func ConnectSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one writer keeps SQLite from returning SQLITE_BUSY under load
	db.SetMaxOpenConns(1)
	return db, nil
}

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// sqliteDSN appends the connection pragmas, keeping any query the caller
// already put on the path.
func sqliteDSN(path string) string {
	switch {
	case !strings.Contains(path, "?"):
		return path + "?" + sqlitePragmas
	case strings.HasSuffix(path, "?"), strings.HasSuffix(path, "&"):
		return path + sqlitePragmas
	default:
		return path + "&" + sqlitePragmas
	}
}
