package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/storage"
)

func emailChannel(to ...string) model.NotificationChannel {
	return model.NotificationChannel{Config: model.ChannelConfig{Recipients: model.Recipients{To: to}}}
}

func TestChannelService_Validation(t *testing.T) {
	f, api := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	svc := NewChannelService(api, slog.Default())
	ctx := context.Background()

	tests := []struct {
		name string
		ch   model.NotificationChannel
	}{
		{"no recipients", emailChannel()},
		{"blank recipient only", emailChannel("  ")},
		{"bad address", emailChannel("ops@example.com", "not-an-email")},
		{"display name", emailChannel("Ops <ops@example.com>")},
		{"slack", model.NotificationChannel{ChannelType: "slack"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.ch)
			assert.True(t, appErr.IsValidation(err))
		})
	}
	requireHits(t, f, 0)
}

func TestChannelService_CRUD(t *testing.T) {
	f, api := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, successEnvelope(`[{"id":"c1","channel_type":"email","config":{"recipients":{"to":["ops@example.com"]}}}]`))
		case http.MethodPost:
			writeJSON(w, http.StatusOK, successEnvelope(`{"id":"c2","channel_type":"email","config":{"recipients":{"to":["dev@example.com"]}}}`))
		default:
			writeJSON(w, http.StatusOK, `{"status":"success"}`)
		}
	})
	svc := NewChannelService(api, slog.Default())
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"ops@example.com"}, list[0].Config.Recipients.To)

	created, err := svc.Create(ctx, emailChannel(" dev@example.com "))
	require.NoError(t, err)
	assert.Equal(t, "c2", created.ID)

	updated, err := svc.Update(ctx, "c2", emailChannel("dev@example.com", "qa@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "c2", updated.ID)
	assert.Equal(t, ChannelTypeEmail, updated.ChannelType)

	require.NoError(t, svc.Delete(ctx, "c2"))

	hits := requireHits(t, f, 4)
	assert.Equal(t, "/v1/user/integrations", hits[1].Path)
	assert.Equal(t, "email", hits[1].Body["channel_type"])
	assert.Equal(t, []any{"dev@example.com"}, hits[1].Body["config"].(map[string]any)["recipients"].(map[string]any)["to"])
	assert.Equal(t, "/v1/user/integrations/c2", hits[3].Path)
}

func TestStatusPageService(t *testing.T) {
	f, api := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch:
			writeJSON(w, http.StatusOK, successEnvelope(`{"id":"sp1","name":"Public","is_published":true,"shareable_id":"abc"}`))
		case r.URL.Path == "/v1/user/status-pages/sp1/reset-link":
			writeJSON(w, http.StatusOK, successEnvelope(`{"id":"sp1","name":"Public","shareable_id":"xyz"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/user/status-pages":
			writeJSON(w, http.StatusOK, successEnvelope(`[{"id":"sp1","name":"Public","monitor_ids":["m1"]}]`))
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, `{"status":"success","data":null}`)
		default:
			writeJSON(w, http.StatusOK, `{"status":"success"}`)
		}
	})
	svc := NewStatusPageService(api, slog.Default())
	ctx := context.Background()

	pages, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"m1"}, pages[0].MonitorIDs)

	_, err = svc.Get(ctx, "gone")
	assert.True(t, appErr.IsNotFound(err))

	published, err := svc.SetPublished(ctx, "sp1", true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	reset, err := svc.ResetShareableLink(ctx, "sp1")
	require.NoError(t, err)
	assert.Equal(t, "xyz", reset.ShareableID)

	_, err = svc.Create(ctx, model.StatusPage{})
	assert.True(t, appErr.IsValidation(err))

	created, err := svc.Create(ctx, model.StatusPage{Name: "Internal", MonitorIDs: []string{"m1"}})
	require.NoError(t, err)
	assert.Equal(t, "Internal", created.Name)

	require.NoError(t, svc.Delete(ctx, "sp1"))

	hits := requireHits(t, f, 6)
	assert.Equal(t, http.MethodPatch, hits[2].Method)
	assert.Equal(t, true, hits[2].Body["is_published"])
	assert.Equal(t, http.MethodPost, hits[3].Method)
}

func TestRegionService(t *testing.T) {
	_, api := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, successEnvelope(`[{"id":"eu-west","name":"Europe (Ireland)"},{"id":"us-east","name":"US East"}]`))
	})
	svc := NewRegionService(api, slog.Default())

	regions, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Option{Value: "eu-west", Label: "Europe (Ireland)"}, opts[0])
}

func TestRegionService_UpstreamDown(t *testing.T) {
	_, api := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{"error":"gateway"}`)
	})
	_, err := NewRegionService(api, slog.Default()).Options(context.Background())
	require.Error(t, err)
	assert.True(t, appErr.IsUpstream(err))
}

func TestHealthService(t *testing.T) {
	store := storage.NewMockSettingsStorage(t)
	store.On("Ping", mock.Anything).Return(nil).Once()
	store.On("Ping", mock.Anything).Return(errors.New("closed")).Once()

	svc := NewHealthService(store, slog.Default())
	assert.NoError(t, svc.Liveness(context.Background()))

	report, err := svc.Readiness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", report.Status)
	assert.Equal(t, ProbeOK, report.Checks["settings_store"])

	report, err = svc.Readiness(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "unavailable", report.Status)
	assert.Equal(t, ProbeDown, report.Checks["settings_store"])
}
