package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
)

type PostgresStorage struct {
	db *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: pool}
}

func (ps *PostgresStorage) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS plugin_settings (
			id           BIGSERIAL PRIMARY KEY,
			key          TEXT NOT NULL UNIQUE,
			value        TEXT NOT NULL,
			date_created TIMESTAMPTZ NOT NULL,
			date_updated TIMESTAMPTZ NOT NULL,
			uid          UUID NOT NULL
		)
	`
	if _, err := ps.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", settingsTable, err)
	}
	return nil
}

func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.db.Ping(ctx)
}

func (ps *PostgresStorage) Close() error {
	ps.db.Close()
	return nil
}

func (ps *PostgresStorage) Find(ctx context.Context, key string) (*model.PluginSetting, error) {
	const query = `
		SELECT id, key, value, date_created, date_updated, uid::text
		FROM plugin_settings
		WHERE key = $1
	`

	var s model.PluginSetting
	err := ps.db.QueryRow(ctx, query, key).Scan(
		&s.ID, &s.Key, &s.Value, &s.DateCreated, &s.DateUpdated, &s.UID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErr.NewNotFound("setting %q", key)
		}
		return nil, fmt.Errorf("find setting %q failed: %w", key, err)
	}
	return &s, nil
}

func (ps *PostgresStorage) List(ctx context.Context) ([]model.PluginSetting, error) {
	const query = `
		SELECT id, key, value, date_created, date_updated, uid::text
		FROM plugin_settings
		ORDER BY key
	`

	rows, err := ps.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var settings []model.PluginSetting
	for rows.Next() {
		var s model.PluginSetting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.DateCreated, &s.DateUpdated, &s.UID); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return settings, nil
}

func (ps *PostgresStorage) Upsert(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO plugin_settings (key, value, date_created, date_updated, uid)
		VALUES ($1, $2, $3, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, date_updated = EXCLUDED.date_updated
	`

	now := time.Now().UTC()
	if _, err := ps.db.Exec(ctx, query, key, value, now, uuid.New()); err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}
	return nil
}

func (ps *PostgresStorage) Delete(ctx context.Context, key string) error {
	if _, err := ps.db.Exec(ctx, `DELETE FROM plugin_settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}
