package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/service"
	"github.com/samims/sitepulse/pkg/tracing"
)

// settingsView is what the browser sees. The API key is always masked.
type settingsView struct {
	MonitoringURL           string   `json:"monitoringUrl"`
	MonitoringURLOverridden bool     `json:"monitoringUrlOverridden"`
	APIKey                  string   `json:"apiKey"`
	APIKeySet               bool     `json:"apiKeySet"`
	MonitorID               string   `json:"monitorId"`
	MonitoringInterval      int      `json:"monitoringInterval"`
	NotificationEmails      []string `json:"notificationEmails"`
	NotificationsEnabled    bool     `json:"notificationsEnabled"`
	StatusPageID            string   `json:"statusPageId"`
}

// settingsUpdate only touches fields present in the request.
type settingsUpdate struct {
	MonitoringURL        *string   `json:"monitoringUrl"`
	APIKey               *string   `json:"apiKey"`
	MonitoringInterval   *int      `json:"monitoringInterval"`
	NotificationEmails   *[]string `json:"notificationEmails"`
	NotificationsEnabled *bool     `json:"notificationsEnabled"`
	StatusPageID         *string   `json:"statusPageId"`
}

type SettingsHandler struct {
	settings    service.SettingsService
	monitors    service.MonitorService
	urlOverride string
	logger      *slog.Logger
	tracer      *tracing.Tracer
}

func NewSettingsHandler(settings service.SettingsService, monitors service.MonitorService, urlOverride string, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings:    settings,
		monitors:    monitors,
		urlOverride: urlOverride,
		logger:      logger.With("layer", "handler", "component", "settingsHandler"),
		tracer:      tracing.NewTracer(tracing.GetTracer("settings-handler")),
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "GetSettings")
	defer span.End()

	view, err := h.view(ctx)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "GetSettings", err)
		return
	}
	respond(w, http.StatusOK, "", view)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "UpdateSettings")
	defer span.End()

	var req settingsUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, h.logger, "UpdateSettings", err)
		return
	}
	if err := h.apply(ctx, req); err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "UpdateSettings", err)
		return
	}

	view, err := h.view(ctx)
	if err != nil {
		respondServiceError(w, h.logger, "UpdateSettings", err)
		return
	}
	respond(w, http.StatusOK, "Settings saved", view)
}

// apply validates every field before writing any of them.
func (h *SettingsHandler) apply(ctx context.Context, req settingsUpdate) error {
	if req.MonitoringURL != nil {
		if u := strings.TrimSpace(*req.MonitoringURL); u != "" {
			if err := service.ValidateURL(u); err != nil {
				return err
			}
		}
	}
	if req.MonitoringInterval != nil && *req.MonitoringInterval <= 0 {
		return appErr.NewValidation("monitoring interval must be positive")
	}
	if req.NotificationEmails != nil && len(*req.NotificationEmails) > 0 {
		if err := service.ValidateEmails(*req.NotificationEmails); err != nil {
			return err
		}
	}

	newKey, keyChanged, err := h.apiKeyChange(ctx, req.APIKey)
	if err != nil {
		return err
	}
	if keyChanged && newKey != "" {
		if err := h.monitors.ValidateToken(ctx, newKey); err != nil {
			// only a refusal from upstream says the key is bad
			if appErr.IsRejected(err) {
				return appErr.NewValidation("API key was rejected: %v", err)
			}
			return err
		}
	}

	if req.MonitoringURL != nil {
		u := strings.TrimSpace(*req.MonitoringURL)
		if err := h.settings.SetMonitoringURL(ctx, u); err != nil {
			return err
		}
		// the monitor belongs to the old URL
		if u == "" {
			if err := h.settings.SetMonitorID(ctx, ""); err != nil {
				return err
			}
		}
	}
	if keyChanged {
		if err := h.settings.SetAPIKey(ctx, newKey); err != nil {
			return err
		}
	}
	if req.MonitoringInterval != nil {
		if err := h.settings.SetMonitoringInterval(ctx, *req.MonitoringInterval); err != nil {
			return err
		}
	}
	if req.NotificationEmails != nil {
		if err := h.settings.SetNotificationEmails(ctx, *req.NotificationEmails); err != nil {
			return err
		}
	}
	if req.NotificationsEnabled != nil {
		if err := h.settings.SetNotificationsEnabled(ctx, *req.NotificationsEnabled); err != nil {
			return err
		}
	}
	if req.StatusPageID != nil {
		if err := h.settings.SetStatusPageID(ctx, strings.TrimSpace(*req.StatusPageID)); err != nil {
			return err
		}
	}
	return nil
}

// apiKeyChange ignores the masked value the browser echoes back.
func (h *SettingsHandler) apiKeyChange(ctx context.Context, submitted *string) (string, bool, error) {
	if submitted == nil {
		return "", false, nil
	}
	key := strings.TrimSpace(*submitted)
	current, err := h.settings.APIKey(ctx)
	if err != nil {
		return "", false, err
	}
	if key == current || (key != "" && key == service.MaskAPIKey(current)) {
		return "", false, nil
	}
	return key, true, nil
}

func (h *SettingsHandler) view(ctx context.Context) (settingsView, error) {
	var v settingsView
	var err error

	if v.MonitoringURL, err = h.settings.MonitoringURL(ctx); err != nil {
		return v, err
	}
	if h.urlOverride != "" {
		v.MonitoringURL = h.urlOverride
		v.MonitoringURLOverridden = true
	}

	key, err := h.settings.APIKey(ctx)
	if err != nil {
		return v, err
	}
	v.APIKey = service.MaskAPIKey(key)
	v.APIKeySet = key != ""

	if v.MonitorID, err = h.settings.MonitorID(ctx); err != nil {
		return v, err
	}
	if v.MonitoringInterval, err = h.settings.MonitoringInterval(ctx); err != nil {
		return v, err
	}
	if v.NotificationEmails, err = h.settings.NotificationEmails(ctx); err != nil {
		return v, err
	}
	if v.NotificationEmails == nil {
		v.NotificationEmails = []string{}
	}
	if v.NotificationsEnabled, err = h.settings.NotificationsEnabled(ctx); err != nil {
		return v, err
	}
	if v.StatusPageID, err = h.settings.StatusPageID(ctx); err != nil {
		return v, err
	}
	return v, nil
}
