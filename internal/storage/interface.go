package storage

import (
	"context"

	"github.com/samims/sitepulse/internal/model"
)

// SettingsStorage persists plugin settings as key/encoded-value rows.
// Concurrent Upserts of one key are last-write-wins.
type SettingsStorage interface {
	Ping(ctx context.Context) error
	// Find returns errors.ErrNotFound when the key has no row.
	Find(ctx context.Context, key string) (*model.PluginSetting, error)
	List(ctx context.Context) ([]model.PluginSetting, error)
	Upsert(ctx context.Context, key, value string) error
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
	Close() error
}
