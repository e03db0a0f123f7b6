package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/samims/sitepulse/internal/errors"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	ctx := context.Background()
	db, err := ConnectSQLite(ctx, filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	s := NewSQLiteStorage(db)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_FindMissing(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.Find(context.Background(), "monitoring_url")
	assert.Nil(t, got)
	assert.True(t, appErr.IsNotFound(err))
}

func TestSQLiteStorage_UpsertInsertsThenUpdates(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "monitoring_url", "https://a.example"))
	first, err := s.Find(ctx, "monitoring_url")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", first.Value)
	assert.NotEmpty(t, first.UID)
	assert.False(t, first.DateCreated.IsZero())

	require.NoError(t, s.Upsert(ctx, "monitoring_url", "https://b.example"))
	second, err := s.Find(ctx, "monitoring_url")
	require.NoError(t, err)

	assert.Equal(t, "https://b.example", second.Value)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.UID, second.UID)
	assert.Equal(t, first.DateCreated, second.DateCreated)
	assert.False(t, second.DateUpdated.Before(first.DateUpdated))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStorage_Delete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "api_key", "secret"))
	require.NoError(t, s.Delete(ctx, "api_key"))

	_, err := s.Find(ctx, "api_key")
	assert.True(t, appErr.IsNotFound(err))

	// deleting again is fine
	assert.NoError(t, s.Delete(ctx, "api_key"))
}

func TestSQLiteStorage_ListOrderedByKey(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for _, k := range []string{"status_page_id", "api_key", "monitor_id"} {
		require.NoError(t, s.Upsert(ctx, k, "v"))
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "api_key", all[0].Key)
	assert.Equal(t, "monitor_id", all[1].Key)
	assert.Equal(t, "status_page_id", all[2].Key)
}

func TestSQLiteStorage_ConcurrentUpsertLastWriteWins(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Upsert(ctx, "monitoring_interval", "60"))
		}()
	}
	wg.Wait()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStorage_Ping(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"settings.db", "settings.db?" + sqlitePragmas},
		{"file:settings.db?mode=rwc", "file:settings.db?mode=rwc&" + sqlitePragmas},
		{"settings.db?", "settings.db?" + sqlitePragmas},
		{"settings.db?mode=rwc&", "settings.db?mode=rwc&" + sqlitePragmas},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.path), tt.path)
	}
}

func TestConnectSQLite_PathWithQuery(t *testing.T) {
	ctx := context.Background()
	db, err := ConnectSQLite(ctx, "file:"+filepath.Join(t.TempDir(), "settings.db")+"?mode=rwc")
	require.NoError(t, err)
	s := NewSQLiteStorage(db)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))

	var mode string
	require.NoError(t, db.GetContext(ctx, &mode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", mode)

	require.NoError(t, s.Upsert(ctx, "monitoring_url", "https://example.com"))
	got, err := s.Find(ctx, "monitoring_url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.Value)
}
