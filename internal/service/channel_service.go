package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
)

const (
	channelsPath = "user/integrations"

	ChannelTypeEmail = "email"
)

type ChannelService interface {
	List(ctx context.Context) ([]model.NotificationChannel, error)
	Create(ctx context.Context, ch model.NotificationChannel) (*model.NotificationChannel, error)
	Update(ctx context.Context, id string, ch model.NotificationChannel) (*model.NotificationChannel, error)
	Delete(ctx context.Context, id string) error
}

type channelService struct {
	api    Upstream
	logger *slog.Logger
}

func NewChannelService(api Upstream, logger *slog.Logger) ChannelService {
	return &channelService{
		api:    api,
		logger: logger.With("layer", "service", "component", "channelService"),
	}
}

func (s *channelService) List(ctx context.Context) ([]model.NotificationChannel, error) {
	channels, err := call[[]model.NotificationChannel](ctx, s.api, http.MethodGet, channelsPath, nil, nil)
	if err != nil {
		s.logger.Error("Failed to list notification channels", slog.Any("error", err))
		return nil, err
	}
	if channels == nil {
		channels = []model.NotificationChannel{}
	}
	return channels, nil
}

func (s *channelService) Create(ctx context.Context, ch model.NotificationChannel) (*model.NotificationChannel, error) {
	ch, err := normalizeChannel(ch)
	if err != nil {
		return nil, err
	}
	created, err := call[*model.NotificationChannel](ctx, s.api, http.MethodPost, channelsPath, ch, nil)
	if err != nil {
		s.logger.Error("Failed to create notification channel", slog.Any("error", err))
		return nil, err
	}
	if created == nil {
		created = &ch
	}
	return created, nil
}

func (s *channelService) Update(ctx context.Context, id string, ch model.NotificationChannel) (*model.NotificationChannel, error) {
	path, err := resourcePath(channelsPath, id)
	if err != nil {
		return nil, err
	}
	ch, err = normalizeChannel(ch)
	if err != nil {
		return nil, err
	}
	updated, err := call[*model.NotificationChannel](ctx, s.api, http.MethodPut, path, ch, nil)
	if err != nil {
		s.logger.Error("Failed to update notification channel", slog.String("id", id), slog.Any("error", err))
		return nil, err
	}
	if updated == nil {
		ch.ID = id
		updated = &ch
	}
	return updated, nil
}

func (s *channelService) Delete(ctx context.Context, id string) error {
	path, err := resourcePath(channelsPath, id)
	if err != nil {
		return err
	}
	return exec(ctx, s.api, http.MethodDelete, path, nil)
}

// normalizeChannel defaults the type to email and trims recipients.
func normalizeChannel(ch model.NotificationChannel) (model.NotificationChannel, error) {
	if ch.ChannelType == "" {
		ch.ChannelType = ChannelTypeEmail
	}
	if ch.ChannelType != ChannelTypeEmail {
		return ch, appErr.NewValidation("unsupported channel type %q", ch.ChannelType)
	}

	to := make([]string, 0, len(ch.Config.Recipients.To))
	for _, r := range ch.Config.Recipients.To {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if err := ValidateEmails(to); err != nil {
		return ch, err
	}
	ch.Config.Recipients.To = to
	return ch, nil
}
