package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/service"
	"github.com/samims/sitepulse/pkg/tracing"
)

type MonitorHandler struct {
	svc    service.MonitorService
	logger *slog.Logger
	tracer *tracing.Tracer
}

func NewMonitorHandler(svc service.MonitorService, logger *slog.Logger) *MonitorHandler {
	return &MonitorHandler{
		svc:    svc,
		logger: logger.With("layer", "handler", "component", "monitorHandler"),
		tracer: tracing.NewTracer(tracing.GetTracer("monitor-handler")),
	}
}

func (h *MonitorHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "ListMonitors")
	defer span.End()

	monitors, err := h.svc.List(ctx)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "ListMonitors", err)
		return
	}
	respond(w, http.StatusOK, "", monitors)
}

func (h *MonitorHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "GetMonitor")
	defer span.End()

	m, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "GetMonitor", err)
		return
	}
	respond(w, http.StatusOK, "", m)
}

func (h *MonitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "CreateMonitor")
	defer span.End()

	var m model.Monitor
	if err := decodeJSON(r, &m); err != nil {
		respondServiceError(w, h.logger, "CreateMonitor", err)
		return
	}
	created, err := h.svc.Create(ctx, m)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "CreateMonitor", err)
		return
	}
	respond(w, http.StatusCreated, "Monitor created", created)
}

func (h *MonitorHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "UpdateMonitor")
	defer span.End()

	var m model.Monitor
	if err := decodeJSON(r, &m); err != nil {
		respondServiceError(w, h.logger, "UpdateMonitor", err)
		return
	}
	updated, err := h.svc.Update(ctx, chi.URLParam(r, "id"), m)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "UpdateMonitor", err)
		return
	}
	respond(w, http.StatusOK, "Monitor updated", updated)
}

func (h *MonitorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "DeleteMonitor")
	defer span.End()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "DeleteMonitor", err)
		return
	}
	respond(w, http.StatusOK, "Monitor deleted", nil)
}

func (h *MonitorHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "BulkMonitors")
	defer span.End()

	var action model.BulkAction
	if err := decodeJSON(r, &action); err != nil {
		respondServiceError(w, h.logger, "BulkMonitors", err)
		return
	}
	if err := h.svc.Bulk(ctx, action); err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "BulkMonitors", err)
		return
	}
	respond(w, http.StatusOK, "Bulk action applied", nil)
}

func (h *MonitorHandler) Options(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "MonitorOptions")
	defer span.End()

	opts, err := h.svc.Options(ctx)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "MonitorOptions", err)
		return
	}
	respond(w, http.StatusOK, "", opts)
}

// Histogram accepts ?since= as unix seconds or RFC 3339.
func (h *MonitorHandler) Histogram(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "MonitorHistogram")
	defer span.End()

	since, err := parseSince(r.URL.Query().Get("since"))
	if err != nil {
		respondServiceError(w, h.logger, "MonitorHistogram", err)
		return
	}
	points, err := h.svc.Histogram(ctx, chi.URLParam(r, "id"), since)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "MonitorHistogram", err)
		return
	}
	respond(w, http.StatusOK, "", points)
}

func (h *MonitorHandler) ResponseTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "MonitorResponseTime")
	defer span.End()

	data, err := h.svc.ResponseTime(ctx, chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "MonitorResponseTime", err)
		return
	}
	respond(w, http.StatusOK, "", data)
}

func (h *MonitorHandler) UptimeStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "MonitorUptimeStats")
	defer span.End()

	data, err := h.svc.UptimeStats(ctx, chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "MonitorUptimeStats", err)
		return
	}
	respond(w, http.StatusOK, "", data)
}

func parseSince(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, appErr.NewValidation("invalid since %q", v)
	}
	return t, nil
}
