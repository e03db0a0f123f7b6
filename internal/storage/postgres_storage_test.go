package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/samims/sitepulse/internal/errors"
)

func newTestPostgres(t *testing.T) *PostgresStorage {
	t.Helper()
	dsn := os.Getenv("SITEPULSE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SITEPULSE_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := NewPostgresPool(ctx, dsn)
	if err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}

	ps := NewPostgresStorage(pool)
	require.NoError(t, ps.Migrate(ctx))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM plugin_settings WHERE key LIKE 'test_%'`)
		pool.Close()
	})
	return ps
}

func TestPostgresStorage_RoundTrip(t *testing.T) {
	ps := newTestPostgres(t)
	ctx := context.Background()

	require.NoError(t, ps.Upsert(ctx, "test_monitoring_url", "https://a.example"))
	require.NoError(t, ps.Upsert(ctx, "test_monitoring_url", "https://b.example"))

	got, err := ps.Find(ctx, "test_monitoring_url")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", got.Value)
	assert.Len(t, got.UID, 36)

	require.NoError(t, ps.Delete(ctx, "test_monitoring_url"))
	_, err = ps.Find(ctx, "test_monitoring_url")
	assert.True(t, appErr.IsNotFound(err))
}

func TestNewPostgresPool_EmptyDSN(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), "")
	assert.Error(t, err)
}
