package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samims/sitepulse/internal/model"
	"github.com/samims/sitepulse/internal/service"
	"github.com/samims/sitepulse/pkg/tracing"
)

type CheckHandler struct {
	svc    service.HealthCheckService
	logger *slog.Logger
	tracer *tracing.Tracer
}

func NewCheckHandler(svc service.HealthCheckService, logger *slog.Logger) *CheckHandler {
	return &CheckHandler{
		svc:    svc,
		logger: logger.With("layer", "handler", "component", "checkHandler"),
		tracer: tracing.NewTracer(tracing.GetTracer("check-handler")),
	}
}

// Run executes one check type. It answers 200 even for failed checks: the
// dashboard card renders the result's status.
func (h *CheckHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "RunCheck")
	defer span.End()

	ct, err := model.ParseCheckType(chi.URLParam(r, "type"))
	if err != nil {
		h.logger.Warn("Unknown check type requested", slog.String("type", chi.URLParam(r, "type")))
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	q := r.URL.Query()
	res := h.svc.Run(ctx, service.CheckRequest{
		Type:       ct,
		Strategy:   q.Get("strategy"),
		ForceFetch: isTruthy(q.Get("force")),
	})
	if res.Status == model.StatusError {
		h.tracer.RecordError(span, errString(res.Message))
	}

	writeEnvelope(w, http.StatusOK, envelope{
		Success: res.Status == model.StatusOK,
		Message: res.Message,
		Data:    res,
	})
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

type errString string

func (e errString) Error() string { return string(e) }
