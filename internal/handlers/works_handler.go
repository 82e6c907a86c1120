package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aishow/backend/internal/models"
	"github.com/aishow/backend/internal/repositories"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps the read operations of the catalog.
type CatalogService interface {
	// Method ListWorks retrieve works in insertion order, optionally filtered by type.
	//
	// An empty "typeParam" parameter returns the full collection; an unknown
	// type value matches no works.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	ListWorks(ctx context.Context, typeParam string) ([]models.Work, error)
	// Method GetWork retrieve a work by its id.
	//
	// If no work with the given id exists, repositories.ErrWorkNotFound is returned.
	GetWork(ctx context.Context, id string) (*models.Work, error)
}

// WorksHandler handles public catalog HTTP requests
type WorksHandler struct {
	BaseHandler
	service CatalogService
}

// NewWorksHandler creates a new works handler
func NewWorksHandler(svc CatalogService, logger *zap.Logger) *WorksHandler {
	return &WorksHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all public catalog routes
// Note: This assumes the router is already scoped to /api
func (h *WorksHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/works", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
	})
}

// List handles GET /api/works
// @Summary List works
// @Description Get all catalog works in insertion order, optionally filtered by type
// @Tags works
// @Accept json
// @Produce json
// @Param type query string false "Work type filter: image, novel or game"
// @Success 200 {object} Response{data=[]models.Work} "List of works"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/works [get]
func (h *WorksHandler) List(w http.ResponseWriter, r *http.Request) {
	typeParam := r.URL.Query().Get("type")

	works, err := h.service.ListWorks(r.Context(), typeParam)
	if err != nil {
		h.Logger.Error("failed to list works", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list works")
		return
	}

	h.RespondSuccess(w, http.StatusOK, works)
}

// GetByID handles GET /api/works/{id}
// @Summary Get work by id
// @Description Retrieve a single catalog work by its id
// @Tags works
// @Accept json
// @Produce json
// @Param id path string true "Work id"
// @Success 200 {object} Response{data=models.Work} "The work"
// @Failure 404 {object} Response "Work not found"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/works/{id} [get]
func (h *WorksHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	work, err := h.service.GetWork(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrWorkNotFound) {
			h.Logger.Info("work not found", zap.String("id", id))
			h.RespondError(w, http.StatusNotFound, "work not found")
			return
		}
		h.Logger.Error("failed to get work", zap.Error(err), zap.String("id", id))
		h.RespondError(w, http.StatusInternalServerError, "failed to get work")
		return
	}

	h.RespondSuccess(w, http.StatusOK, work)
}

// Health handles GET /api/health
// @Summary Health check
// @Description Report service liveness
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /api/health [get]
func (h *WorksHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.RespondSuccess(w, http.StatusOK, nil)
}
