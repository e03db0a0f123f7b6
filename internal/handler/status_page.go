package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/service"
	"github.com/samims/sitepulse/pkg/tracing"
)

type StatusPageHandler struct {
	svc    service.StatusPageService
	logger *slog.Logger
	tracer *tracing.Tracer
}

func NewStatusPageHandler(svc service.StatusPageService, logger *slog.Logger) *StatusPageHandler {
	return &StatusPageHandler{
		svc:    svc,
		logger: logger.With("layer", "handler", "component", "statusPageHandler"),
		tracer: tracing.NewTracer(tracing.GetTracer("status-page-handler")),
	}
}

func (h *StatusPageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "ListStatusPages")
	defer span.End()

	pages, err := h.svc.List(ctx)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "ListStatusPages", err)
		return
	}
	respond(w, http.StatusOK, "", pages)
}

func (h *StatusPageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "GetStatusPage")
	defer span.End()

	page, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "GetStatusPage", err)
		return
	}
	respond(w, http.StatusOK, "", page)
}

func (h *StatusPageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "CreateStatusPage")
	defer span.End()

	var page model.StatusPage
	if err := decodeJSON(r, &page); err != nil {
		respondServiceError(w, h.logger, "CreateStatusPage", err)
		return
	}
	created, err := h.svc.Create(ctx, page)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "CreateStatusPage", err)
		return
	}
	respond(w, http.StatusCreated, "Status page created", created)
}

func (h *StatusPageHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "UpdateStatusPage")
	defer span.End()

	var page model.StatusPage
	if err := decodeJSON(r, &page); err != nil {
		respondServiceError(w, h.logger, "UpdateStatusPage", err)
		return
	}
	updated, err := h.svc.Update(ctx, chi.URLParam(r, "id"), page)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "UpdateStatusPage", err)
		return
	}
	respond(w, http.StatusOK, "Status page updated", updated)
}

func (h *StatusPageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "DeleteStatusPage")
	defer span.End()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "DeleteStatusPage", err)
		return
	}
	respond(w, http.StatusOK, "Status page deleted", nil)
}

// Publish toggles visibility. Body: {"published": bool}.
func (h *StatusPageHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "PublishStatusPage")
	defer span.End()

	var body struct {
		Published bool `json:"published"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondServiceError(w, h.logger, "PublishStatusPage", err)
		return
	}
	page, err := h.svc.SetPublished(ctx, chi.URLParam(r, "id"), body.Published)
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "PublishStatusPage", err)
		return
	}
	msg := "Status page unpublished"
	if body.Published {
		msg = "Status page published"
	}
	respond(w, http.StatusOK, msg, page)
}

func (h *StatusPageHandler) ResetLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "ResetStatusPageLink")
	defer span.End()

	page, err := h.svc.ResetShareableLink(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.tracer.RecordError(span, err)
		respondServiceError(w, h.logger, "ResetStatusPageLink", err)
		return
	}
	respond(w, http.StatusOK, "Shareable link reset", page)
}
