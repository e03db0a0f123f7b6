package handler

import (
	"log/slog"
	"net/http"

	"github.com/samims/sitepulse/internal/service"
)

type RegionHandler struct {
	svc    service.RegionService
	logger *slog.Logger
}

func NewRegionHandler(svc service.RegionService, logger *slog.Logger) *RegionHandler {
	return &RegionHandler{svc: svc, logger: logger.With("layer", "handler", "component", "regionHandler")}
}

func (h *RegionHandler) List(w http.ResponseWriter, r *http.Request) {
	regions, err := h.svc.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "ListRegions", err)
		return
	}
	respond(w, http.StatusOK, "", regions)
}

func (h *RegionHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Options(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "RegionOptions", err)
		return
	}
	respond(w, http.StatusOK, "", opts)
}
