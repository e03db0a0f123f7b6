package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/samims/sitepulse/internal/storage"
)

const (
	ProbeOK   = "ok"
	ProbeDown = "down"
)

// ReadinessReport lists the state of each dependency the API needs.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type HealthService interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) (ReadinessReport, error)
}

type healthService struct {
	store        storage.SettingsStorage
	probeTimeout time.Duration
	logger       *slog.Logger
}

func NewHealthService(store storage.SettingsStorage, logger *slog.Logger) HealthService {
	return &healthService{
		store:        store,
		probeTimeout: 2 * time.Second,
		logger:       logger.With("layer", "service", "component", "healthService"),
	}
}

func (s *healthService) Liveness(_ context.Context) error {
	return nil
}

// Readiness pings the settings store. The upstream API is not probed: check
// endpoints degrade on their own when it is unreachable.
func (s *healthService) Readiness(ctx context.Context) (ReadinessReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	report := ReadinessReport{Status: "ready", Checks: map[string]string{"settings_store": ProbeOK}}
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Settings store not ready", slog.Any("error", err))
		report.Status = "unavailable"
		report.Checks["settings_store"] = ProbeDown
		return report, err
	}
	return report, nil
}
