package service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/samims/sitepulse/internal/model"
)

const regionsPath = "regions"

type RegionService interface {
	List(ctx context.Context) ([]model.Region, error)
	Options(ctx context.Context) ([]model.Option, error)
}

type regionService struct {
	api    Upstream
	logger *slog.Logger
}

func NewRegionService(api Upstream, logger *slog.Logger) RegionService {
	return &regionService{
		api:    api,
		logger: logger.With("layer", "service", "component", "regionService"),
	}
}

func (s *regionService) List(ctx context.Context) ([]model.Region, error) {
	regions, err := call[[]model.Region](ctx, s.api, http.MethodGet, regionsPath, nil, nil)
	if err != nil {
		s.logger.Error("Failed to list regions", slog.Any("error", err))
		return nil, err
	}
	if regions == nil {
		regions = []model.Region{}
	}
	return regions, nil
}

func (s *regionService) Options(ctx context.Context) ([]model.Option, error) {
	regions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]model.Option, 0, len(regions))
	for _, r := range regions {
		opts = append(opts, model.Option{Value: r.ID, Label: r.Name})
	}
	return opts, nil
}
