package service

import (
	"context"
	"log/slog"
	"strings"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/storage"
)

const (
	KeyMonitoringURL        = "monitoring_url"
	KeyAPIKey               = "api_key"
	KeyMonitorID            = "monitor_id"
	KeyMonitoringInterval   = "monitoring_interval"
	KeyNotificationEmails   = "notification_emails"
	KeyNotificationsEnabled = "notifications_enabled"
	KeyStatusPageID         = "status_page_id"

	// DefaultMonitoringInterval is in seconds.
	DefaultMonitoringInterval = 300

	maskChar       = '*'
	maskVisibleLen = 4
)

type SettingsService interface {
	// Get returns the decoded value for key, or def when no row exists.
	Get(ctx context.Context, key string, def any) (any, error)
	// Set stores value under key. A nil or empty value deletes the row.
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error

	MonitoringURL(ctx context.Context) (string, error)
	SetMonitoringURL(ctx context.Context, url string) error
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
	MonitorID(ctx context.Context) (string, error)
	SetMonitorID(ctx context.Context, id string) error
	MonitoringInterval(ctx context.Context) (int, error)
	SetMonitoringInterval(ctx context.Context, seconds int) error
	NotificationEmails(ctx context.Context) ([]string, error)
	SetNotificationEmails(ctx context.Context, emails []string) error
	NotificationsEnabled(ctx context.Context) (bool, error)
	SetNotificationsEnabled(ctx context.Context, enabled bool) error
	StatusPageID(ctx context.Context) (string, error)
	SetStatusPageID(ctx context.Context, id string) error

	// Token satisfies client.TokenSource.
	Token(ctx context.Context) (string, error)
}

type settingsService struct {
	store  storage.SettingsStorage
	logger *slog.Logger
}

func NewSettingsService(store storage.SettingsStorage, logger *slog.Logger) SettingsService {
	l := logger.With("layer", "service", "component", "settingsService")
	return &settingsService{store: store, logger: l}
}

func (s *settingsService) Get(ctx context.Context, key string, def any) (any, error) {
	row, err := s.store.Find(ctx, key)
	if err != nil {
		if appErr.IsNotFound(err) {
			return def, nil
		}
		s.logger.Error("Failed to read setting", slog.String("key", key), slog.Any("error", err))
		return def, appErr.NewInternal("failed to read setting %s: %v", key, err)
	}
	return DecodeValue(row.Value), nil
}

func (s *settingsService) Set(ctx context.Context, key string, value any) error {
	if isEmptyValue(value) {
		return s.Delete(ctx, key)
	}

	encoded, err := EncodeValue(value)
	if err != nil {
		return appErr.NewValidation("setting %s: %v", key, err)
	}
	if err := s.store.Upsert(ctx, key, encoded); err != nil {
		s.logger.Error("Failed to store setting", slog.String("key", key), slog.Any("error", err))
		return appErr.NewInternal("failed to store setting %s: %v", key, err)
	}
	s.logger.Debug("Setting stored", slog.String("key", key))
	return nil
}

func (s *settingsService) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to delete setting", slog.String("key", key), slog.Any("error", err))
		return appErr.NewInternal("failed to delete setting %s: %v", key, err)
	}
	s.logger.Debug("Setting deleted", slog.String("key", key))
	return nil
}

// getString returns the stored text as-is, so ids and keys that look numeric
// ("0042", "1") are not decoded into numbers or bools.
func (s *settingsService) getString(ctx context.Context, key string) (string, error) {
	row, err := s.store.Find(ctx, key)
	if err != nil {
		if appErr.IsNotFound(err) {
			return "", nil
		}
		s.logger.Error("Failed to read setting", slog.String("key", key), slog.Any("error", err))
		return "", appErr.NewInternal("failed to read setting %s: %v", key, err)
	}
	return row.Value, nil
}

func (s *settingsService) MonitoringURL(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyMonitoringURL)
}

func (s *settingsService) SetMonitoringURL(ctx context.Context, url string) error {
	return s.Set(ctx, KeyMonitoringURL, strings.TrimSpace(url))
}

func (s *settingsService) APIKey(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyAPIKey)
}

func (s *settingsService) SetAPIKey(ctx context.Context, key string) error {
	return s.Set(ctx, KeyAPIKey, strings.TrimSpace(key))
}

func (s *settingsService) MonitorID(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyMonitorID)
}

func (s *settingsService) SetMonitorID(ctx context.Context, id string) error {
	return s.Set(ctx, KeyMonitorID, id)
}

func (s *settingsService) MonitoringInterval(ctx context.Context) (int, error) {
	v, err := s.Get(ctx, KeyMonitoringInterval, DefaultMonitoringInterval)
	return asInt(v, DefaultMonitoringInterval), err
}

func (s *settingsService) SetMonitoringInterval(ctx context.Context, seconds int) error {
	return s.Set(ctx, KeyMonitoringInterval, seconds)
}

func (s *settingsService) NotificationEmails(ctx context.Context) ([]string, error) {
	v, err := s.Get(ctx, KeyNotificationEmails, nil)
	return asStrings(v), err
}

func (s *settingsService) SetNotificationEmails(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return s.Delete(ctx, KeyNotificationEmails)
	}
	return s.Set(ctx, KeyNotificationEmails, emails)
}

func (s *settingsService) NotificationsEnabled(ctx context.Context) (bool, error) {
	v, err := s.Get(ctx, KeyNotificationsEnabled, false)
	return asBool(v, false), err
}

func (s *settingsService) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.Set(ctx, KeyNotificationsEnabled, enabled)
}

func (s *settingsService) StatusPageID(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyStatusPageID)
}

func (s *settingsService) SetStatusPageID(ctx context.Context, id string) error {
	return s.Set(ctx, KeyStatusPageID, id)
}

func (s *settingsService) Token(ctx context.Context) (string, error) {
	return s.APIKey(ctx)
}

// MaskAPIKey hides all but the first and last four characters. Keys too short
// to keep anything hidden are masked entirely. The length is preserved.
func MaskAPIKey(key string) string {
	runes := []rune(key)
	n := len(runes)
	if n == 0 {
		return ""
	}
	masked := make([]rune, n)
	for i, r := range runes {
		if n > 2*maskVisibleLen && (i < maskVisibleLen || i >= n-maskVisibleLen) {
			masked[i] = r
			continue
		}
		masked[i] = maskChar
	}
	return string(masked)
}
