package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/service"
	"github.com/samims/sitepulse/pkg/tracing"
)

type ChannelHandler struct {
	svc    service.ChannelService
	logger *slog.Logger
	tracer *tracing.Tracer
}

func NewChannelHandler(svc service.ChannelService, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{
		svc:    svc,
		logger: logger.With("layer", "handler", "component", "channelHandler"),
		tracer: tracing.NewTracer(tracing.GetTracer("channel-handler")),
	}
}

func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "ListChannels")
	defer span.End()

	channels, err := h.svc.List(ctx)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "ListChannels", err)
		return
	}
	respond(w, http.StatusOK, "", channels)
}

func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "CreateChannel")
	defer span.End()

	var ch model.NotificationChannel
	if err := decodeJSON(r, &ch); err != nil {
		respondServiceError(w, h.logger, "CreateChannel", err)
		return
	}
	created, err := h.svc.Create(ctx, ch)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "CreateChannel", err)
		return
	}
	respond(w, http.StatusCreated, "Notification channel created", created)
}

func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "UpdateChannel")
	defer span.End()

	var ch model.NotificationChannel
	if err := decodeJSON(r, &ch); err != nil {
		respondServiceError(w, h.logger, "UpdateChannel", err)
		return
	}
	updated, err := h.svc.Update(ctx, chi.URLParam(r, "id"), ch)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "UpdateChannel", err)
		return
	}
	respond(w, http.StatusOK, "Notification channel updated", updated)
}

func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "DeleteChannel")
	defer span.End()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "DeleteChannel", err)
		return
	}
	respond(w, http.StatusOK, "Notification channel deleted", nil)
}
