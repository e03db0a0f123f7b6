package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
)

const (
	monitorsPath      = "user/monitors"
	tokenValidatePath = "tokens/validate"
	BulkActionPause   = "pause"
	BulkActionResume  = "resume"
	BulkActionDelete  = "delete"
)

type MonitorService interface {
	List(ctx context.Context) ([]model.Monitor, error)
	Get(ctx context.Context, id string) (*model.Monitor, error)
	Create(ctx context.Context, m model.Monitor) (*model.Monitor, error)
	Update(ctx context.Context, id string, m model.Monitor) (*model.Monitor, error)
	Delete(ctx context.Context, id string) error
	Bulk(ctx context.Context, action model.BulkAction) error
	// Histogram drops points older than since unless since is zero.
	Histogram(ctx context.Context, id string, since time.Time) ([]model.HistogramPoint, error)
	ResponseTime(ctx context.Context, id string, query url.Values) (json.RawMessage, error)
	UptimeStats(ctx context.Context, id string, query url.Values) (json.RawMessage, error)
	// Options lists monitors as dropdown entries labelled "name (url)".
	Options(ctx context.Context) ([]model.Option, error)
	// ValidateToken checks an API key upstream before it is stored.
	ValidateToken(ctx context.Context, token string) error
}

type monitorService struct {
	api    Upstream
	logger *slog.Logger
}

func NewMonitorService(api Upstream, logger *slog.Logger) MonitorService {
	return &monitorService{
		api:    api,
		logger: logger.With("layer", "service", "component", "monitorService"),
	}
}

func (s *monitorService) List(ctx context.Context) ([]model.Monitor, error) {
	monitors, err := call[[]model.Monitor](ctx, s.api, http.MethodGet, monitorsPath, nil, nil)
	if err != nil {
		s.logger.Error("Failed to list monitors", slog.Any("error", err))
		return nil, err
	}
	if monitors == nil {
		monitors = []model.Monitor{}
	}
	return monitors, nil
}

func (s *monitorService) Get(ctx context.Context, id string) (*model.Monitor, error) {
	path, err := resourcePath(monitorsPath, id)
	if err != nil {
		return nil, err
	}
	m, err := call[*model.Monitor](ctx, s.api, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, appErr.NewNotFound("monitor %s", id)
	}
	return m, nil
}

func (s *monitorService) Create(ctx context.Context, m model.Monitor) (*model.Monitor, error) {
	if err := validateMonitor(m); err != nil {
		return nil, err
	}
	created, err := call[*model.Monitor](ctx, s.api, http.MethodPost, monitorsPath, m, nil)
	if err != nil {
		s.logger.Error("Failed to create monitor", slog.String("name", m.Name), slog.Any("error", err))
		return nil, err
	}
	if created == nil {
		created = &m
	}
	s.logger.Info("Monitor created", slog.String("id", created.ID), slog.String("url", m.Config.Meta.URL))
	return created, nil
}

func (s *monitorService) Update(ctx context.Context, id string, m model.Monitor) (*model.Monitor, error) {
	path, err := resourcePath(monitorsPath, id)
	if err != nil {
		return nil, err
	}
	if err := validateMonitor(m); err != nil {
		return nil, err
	}
	updated, err := call[*model.Monitor](ctx, s.api, http.MethodPut, path, m, nil)
	if err != nil {
		s.logger.Error("Failed to update monitor", slog.String("id", id), slog.Any("error", err))
		return nil, err
	}
	if updated == nil {
		m.ID = id
		updated = &m
	}
	return updated, nil
}

func (s *monitorService) Delete(ctx context.Context, id string) error {
	path, err := resourcePath(monitorsPath, id)
	if err != nil {
		return err
	}
	if err := exec(ctx, s.api, http.MethodDelete, path, nil); err != nil {
		s.logger.Error("Failed to delete monitor", slog.String("id", id), slog.Any("error", err))
		return err
	}
	s.logger.Info("Monitor deleted", slog.String("id", id))
	return nil
}

func (s *monitorService) Bulk(ctx context.Context, action model.BulkAction) error {
	switch action.Action {
	case BulkActionPause, BulkActionResume, BulkActionDelete:
	default:
		return appErr.NewValidation("unknown bulk action %q", action.Action)
	}
	if len(action.IDs) == 0 {
		return appErr.NewValidation("no monitors selected")
	}
	return exec(ctx, s.api, http.MethodPost, monitorsPath+"/bulk", action)
}

func (s *monitorService) Histogram(ctx context.Context, id string, since time.Time) ([]model.HistogramPoint, error) {
	path, err := resourcePath(monitorsPath, id, "histogram")
	if err != nil {
		return nil, err
	}
	points, err := call[[]model.HistogramPoint](ctx, s.api, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		if points == nil {
			points = []model.HistogramPoint{}
		}
		return points, nil
	}

	cutoff := since.Unix()
	filtered := make([]model.HistogramPoint, 0, len(points))
	for _, p := range points {
		if p.Timestamp >= cutoff {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *monitorService) ResponseTime(ctx context.Context, id string, query url.Values) (json.RawMessage, error) {
	return s.stats(ctx, id, "response-time", query)
}

func (s *monitorService) UptimeStats(ctx context.Context, id string, query url.Values) (json.RawMessage, error) {
	return s.stats(ctx, id, "uptime-stats", query)
}

func (s *monitorService) stats(ctx context.Context, id, kind string, query url.Values) (json.RawMessage, error) {
	path, err := resourcePath(monitorsPath, id, kind)
	if err != nil {
		return nil, err
	}
	return call[json.RawMessage](ctx, s.api, http.MethodGet, path, nil, query)
}

func (s *monitorService) Options(ctx context.Context) ([]model.Option, error) {
	monitors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]model.Option, 0, len(monitors))
	for _, m := range monitors {
		opts = append(opts, model.Option{
			Value: m.ID,
			Label: fmt.Sprintf("%s (%s)", m.Name, m.Config.Meta.URL),
		})
	}
	return opts, nil
}

func (s *monitorService) ValidateToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return appErr.NewValidation("API key is required")
	}
	if err := exec(ctx, s.api, http.MethodPost, tokenValidatePath, map[string]string{"token": token}); err != nil {
		s.logger.Warn("API key rejected", slog.Any("error", err))
		return err
	}
	return nil
}

func validateMonitor(m model.Monitor) error {
	if strings.TrimSpace(m.Name) == "" {
		return appErr.NewValidation("monitor name is required")
	}
	return ValidateURL(m.Config.Meta.URL)
}
