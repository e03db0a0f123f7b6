package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samims/sitepulse/internal/service"
)

// HealthHandler serves the orchestration probes. They answer plain JSON, not
// the API envelope.
type HealthHandler struct {
	service service.HealthService
	logger  *slog.Logger
}

func NewHealthHandler(svc service.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{service: svc, logger: logger.With("layer", "handler", "component", "healthHandler")}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Liveness(r.Context()); err != nil {
		writeProbe(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy"})
		return
	}
	writeProbe(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Readiness(r.Context())
	if err != nil {
		h.logger.Warn("Readiness probe failed", slog.Any("error", err))
		writeProbe(w, http.StatusServiceUnavailable, report)
		return
	}
	writeProbe(w, http.StatusOK, report)
}

func writeProbe(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
