package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/kafka"
	"github.com/samims/sitepulse/internal/metrics"
	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/normalizer"
	"github.com/samims/sitepulse/pkg/tracing"
)

const healthcheckPath = "healthcheck"

// CheckRequest asks for one check type against the configured monitoring URL.
type CheckRequest struct {
	Type model.CheckType
	// Strategy is only forwarded for lighthouse checks.
	Strategy   string
	ForceFetch bool
}

type healthcheckBody struct {
	URL        string   `json:"url"`
	Checks     []string `json:"checks"`
	Strategy   string   `json:"strategy,omitempty"`
	ForceFetch bool     `json:"force_fetch,omitempty"`
}

// HealthCheckService runs a single check. Run never fails: every problem is
// folded into the returned result.
type HealthCheckService interface {
	Run(ctx context.Context, req CheckRequest) model.HealthCheckResult
}

type healthCheckService struct {
	api         Upstream
	settings    SettingsService
	publisher   kafka.EventPublisher
	urlOverride string
	logger      *slog.Logger
	tracer      *tracing.Tracer
}

// NewHealthCheckService builds the service. A non-empty urlOverride wins over
// the stored monitoring URL.
func NewHealthCheckService(api Upstream, settings SettingsService, publisher kafka.EventPublisher, urlOverride string, logger *slog.Logger) HealthCheckService {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &healthCheckService{
		api:         api,
		settings:    settings,
		publisher:   publisher,
		urlOverride: urlOverride,
		logger:      logger.With("layer", "service", "component", "healthCheckService"),
		tracer:      tracing.NewTracer(tracing.GetTracer("healthcheck-service")),
	}
}

func (s *healthCheckService) Run(ctx context.Context, req CheckRequest) model.HealthCheckResult {
	res := s.run(ctx, req)
	metrics.CheckResults.WithLabelValues(string(req.Type), string(res.Status)).Inc()
	s.tracer.AddCheckAttributes(trace.SpanFromContext(ctx), string(req.Type), res.URL, string(res.Status))

	if res.Status == model.StatusError {
		s.publish(ctx, res)
	}
	return res
}

func (s *healthCheckService) run(ctx context.Context, req CheckRequest) model.HealthCheckResult {
	target, err := s.target(ctx)
	if err != nil {
		s.logger.Error("Failed to resolve monitoring URL", slog.Any("error", err))
		return normalizer.Degraded(req.Type, "", err)
	}
	if target == "" {
		return normalizer.Warning(req.Type, normalizer.MissingURLMessage)
	}

	body := healthcheckBody{
		URL:        target,
		Checks:     []string{req.Type.UpstreamKey()},
		ForceFetch: req.ForceFetch,
	}
	if req.Type == model.CheckLighthouse && req.Strategy != "" {
		if req.Strategy != model.StrategyMobile && req.Strategy != model.StrategyDesktop {
			return normalizer.Degraded(req.Type, target,
				appErr.NewValidation("strategy must be %q or %q", model.StrategyMobile, model.StrategyDesktop))
		}
		body.Strategy = req.Strategy
	}

	start := time.Now()
	raw, err := s.api.Post(ctx, healthcheckPath, body)
	if err != nil {
		s.logger.Error("Health check request failed",
			slog.String("check_type", string(req.Type)),
			slog.String("url", target),
			slog.Any("error", err))
		return normalizer.Degraded(req.Type, target, err)
	}

	res, err := normalizer.Normalize(req.Type, raw, normalizer.Options{Strategy: body.Strategy})
	if err != nil {
		s.logger.Error("Failed to normalize health check response",
			slog.String("check_type", string(req.Type)),
			slog.String("url", target),
			slog.Any("error", err))
		return normalizer.Degraded(req.Type, target, err)
	}
	if res.URL == "" {
		res.URL = target
	}

	s.logger.Info("Health check completed",
		slog.String("check_type", string(req.Type)),
		slog.String("url", target),
		slog.String("status", string(res.Status)),
		slog.Duration("elapsed", time.Since(start)))
	return res
}

func (s *healthCheckService) target(ctx context.Context) (string, error) {
	if s.urlOverride != "" {
		return s.urlOverride, nil
	}
	return s.settings.MonitoringURL(ctx)
}

func (s *healthCheckService) publish(ctx context.Context, res model.HealthCheckResult) {
	event := model.CheckEvent{
		CheckType: res.CheckType,
		URL:       res.URL,
		Status:    res.Status,
		Message:   res.Message,
		CheckedAt: res.CheckedAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish check event",
			slog.String("check_type", string(res.CheckType)),
			slog.Any("error", err))
	}
}
