package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
)

// SQLiteStorage is the single-file settings backend used for local installs.
// Timestamps are stored as RFC 3339 text.
type SQLiteStorage struct {
	db *sqlx.DB
}

func NewSQLiteStorage(db *sqlx.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// settingRow mirrors the table; SQLite hands timestamps back as text.
type settingRow struct {
	ID          int64  `db:"id"`
	Key         string `db:"key"`
	Value       string `db:"value"`
	DateCreated string `db:"date_created"`
	DateUpdated string `db:"date_updated"`
	UID         string `db:"uid"`
}

func (r settingRow) toModel() model.PluginSetting {
	created, _ := time.Parse(time.RFC3339Nano, r.DateCreated)
	updated, _ := time.Parse(time.RFC3339Nano, r.DateUpdated)
	return model.PluginSetting{
		ID:          r.ID,
		Key:         r.Key,
		Value:       r.Value,
		DateCreated: created,
		DateUpdated: updated,
		UID:         r.UID,
	}
}

func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS plugin_settings (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	key          TEXT NOT NULL UNIQUE,
	value        TEXT NOT NULL,
	date_created TEXT NOT NULL,
	date_updated TEXT NOT NULL,
	uid          TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", settingsTable, err)
	}
	return nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

func (s *SQLiteStorage) Find(ctx context.Context, key string) (*model.PluginSetting, error) {
	var row settingRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, key, value, date_created, date_updated, uid FROM plugin_settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErr.NewNotFound("setting %q", key)
	}
	if err != nil {
		return nil, fmt.Errorf("find setting %q failed: %w", key, err)
	}
	setting := row.toModel()
	return &setting, nil
}

func (s *SQLiteStorage) List(ctx context.Context) ([]model.PluginSetting, error) {
	var rows []settingRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, key, value, date_created, date_updated, uid FROM plugin_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	settings := make([]model.PluginSetting, 0, len(rows))
	for _, r := range rows {
		settings = append(settings, r.toModel())
	}
	return settings, nil
}

func (s *SQLiteStorage) Upsert(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO plugin_settings (key, value, date_created, date_updated, uid)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, date_updated = excluded.date_updated`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, query, key, value, now, now, uuid.NewString()); err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plugin_settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}
