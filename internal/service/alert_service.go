package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/notify"
)

// AlertService turns failed check events into e-mail alerts for the
// recipients configured in settings.
type AlertService interface {
	Handle(ctx context.Context, event model.CheckEvent) error
}

type alertService struct {
	settings    SettingsService
	delivery    notify.Deliverer
	workerLimit int
	cooldown    time.Duration
	now         func() time.Time
	l           *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewAlertService sends at most one alert per check type and URL within
// cooldown, delivering to up to workerLimit recipients concurrently.
func NewAlertService(
	settings SettingsService,
	delivery notify.Deliverer,
	workerLimit int,
	cooldown time.Duration,
	logger *slog.Logger,
) AlertService {
	if workerLimit < 1 {
		workerLimit = 1
	}
	return &alertService{
		settings:    settings,
		delivery:    delivery,
		workerLimit: workerLimit,
		cooldown:    cooldown,
		now:         time.Now,
		l:           logger.With("layer", "service", "component", "alertService"),
		lastSent:    make(map[string]time.Time),
	}
}

func (s *alertService) Handle(ctx context.Context, event model.CheckEvent) error {
	if event.Status != model.StatusError {
		return nil
	}

	enabled, err := s.settings.NotificationsEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		s.l.DebugContext(ctx, "Notifications disabled, dropping alert", slog.String("check_type", string(event.CheckType)))
		return nil
	}
	recipients, err := s.settings.NotificationEmails(ctx)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		s.l.InfoContext(ctx, "No notification recipients configured")
		return nil
	}

	if !s.claim(event) {
		s.l.DebugContext(ctx, "Alert suppressed by cooldown",
			slog.String("check_type", string(event.CheckType)),
			slog.String("url", event.URL))
		return nil
	}

	// one message per recipient so a bad address does not block the rest
	var eg errgroup.Group
	eg.SetLimit(s.workerLimit)
	for _, to := range recipients {
		to := to
		eg.Go(func() error {
			if err := s.delivery.Deliver(ctx, []string{to}, event); err != nil {
				s.l.ErrorContext(ctx, "Alert delivery failed", slog.String("to", to), slog.Any("error", err))
				return fmt.Errorf("deliver alert to %s: %w", to, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.release(event)
		return err
	}
	s.l.InfoContext(ctx, "Alert delivered",
		slog.String("check_type", string(event.CheckType)),
		slog.Int("recipients", len(recipients)))
	return nil
}

func alertKey(event model.CheckEvent) string {
	return string(event.CheckType) + "|" + event.URL
}

// claim reserves the cooldown slot for event, reporting false when an alert
// for the same check and URL went out recently.
func (s *alertService) claim(event model.CheckEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := alertKey(event)
	now := s.now()
	if last, ok := s.lastSent[key]; ok && now.Sub(last) < s.cooldown {
		return false
	}
	s.lastSent[key] = now
	return true
}

func (s *alertService) release(event model.CheckEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastSent, alertKey(event))
}
