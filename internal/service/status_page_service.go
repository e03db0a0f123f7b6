package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	appErr "github.com/samims/sitepulse/internal/errors"
	"github.com/samims/sitepulse/internal/model"
)

const statusPagesPath = "user/status-pages"

type StatusPageService interface {
	List(ctx context.Context) ([]model.StatusPage, error)
	Get(ctx context.Context, id string) (*model.StatusPage, error)
	Create(ctx context.Context, page model.StatusPage) (*model.StatusPage, error)
	Update(ctx context.Context, id string, page model.StatusPage) (*model.StatusPage, error)
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) (*model.StatusPage, error)
	// ResetShareableLink rotates the public link of a page.
	ResetShareableLink(ctx context.Context, id string) (*model.StatusPage, error)
}

type statusPageService struct {
	api    Upstream
	logger *slog.Logger
}

func NewStatusPageService(api Upstream, logger *slog.Logger) StatusPageService {
	return &statusPageService{
		api:    api,
		logger: logger.With("layer", "service", "component", "statusPageService"),
	}
}

func (s *statusPageService) List(ctx context.Context) ([]model.StatusPage, error) {
	pages, err := call[[]model.StatusPage](ctx, s.api, http.MethodGet, statusPagesPath, nil, nil)
	if err != nil {
		s.logger.Error("Failed to list status pages", slog.Any("error", err))
		return nil, err
	}
	if pages == nil {
		pages = []model.StatusPage{}
	}
	return pages, nil
}

func (s *statusPageService) Get(ctx context.Context, id string) (*model.StatusPage, error) {
	path, err := resourcePath(statusPagesPath, id)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, http.MethodGet, path, nil, id)
}

func (s *statusPageService) Create(ctx context.Context, page model.StatusPage) (*model.StatusPage, error) {
	if err := validateStatusPage(page); err != nil {
		return nil, err
	}
	created, err := call[*model.StatusPage](ctx, s.api, http.MethodPost, statusPagesPath, page, nil)
	if err != nil {
		s.logger.Error("Failed to create status page", slog.String("name", page.Name), slog.Any("error", err))
		return nil, err
	}
	if created == nil {
		created = &page
	}
	return created, nil
}

func (s *statusPageService) Update(ctx context.Context, id string, page model.StatusPage) (*model.StatusPage, error) {
	path, err := resourcePath(statusPagesPath, id)
	if err != nil {
		return nil, err
	}
	if err := validateStatusPage(page); err != nil {
		return nil, err
	}
	return s.page(ctx, http.MethodPut, path, page, id)
}

func (s *statusPageService) Delete(ctx context.Context, id string) error {
	path, err := resourcePath(statusPagesPath, id)
	if err != nil {
		return err
	}
	return exec(ctx, s.api, http.MethodDelete, path, nil)
}

func (s *statusPageService) SetPublished(ctx context.Context, id string, published bool) (*model.StatusPage, error) {
	path, err := resourcePath(statusPagesPath, id)
	if err != nil {
		return nil, err
	}
	page, err := s.page(ctx, http.MethodPatch, path, map[string]bool{"is_published": published}, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Status page publish state changed", slog.String("id", id), slog.Bool("published", published))
	return page, nil
}

func (s *statusPageService) ResetShareableLink(ctx context.Context, id string) (*model.StatusPage, error) {
	path, err := resourcePath(statusPagesPath, id, "reset-link")
	if err != nil {
		return nil, err
	}
	return s.page(ctx, http.MethodPost, path, nil, id)
}

func (s *statusPageService) page(ctx context.Context, method, path string, body any, id string) (*model.StatusPage, error) {
	page, err := call[*model.StatusPage](ctx, s.api, method, path, body, nil)
	if err != nil {
		s.logger.Error("Status page request failed",
			slog.String("method", method),
			slog.String("id", id),
			slog.Any("error", err))
		return nil, err
	}
	if page == nil {
		return nil, appErr.NewNotFound("status page %s", id)
	}
	return page, nil
}

func validateStatusPage(page model.StatusPage) error {
	if strings.TrimSpace(page.Name) == "" {
		return appErr.NewValidation("status page name is required")
	}
	return nil
}
