package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aishow/backend/internal/models"
	"github.com/aishow/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadSize = 50 << 20 // 50MB

// AdminService is the interface that wraps the mutating catalog operations.
type AdminService interface {
	// Method CreateWork validate the input and create a catalog record from
	// caller-supplied fields, without any file upload.
	//
	// Invalid input is reported as *services.ValidationError.
	CreateWork(ctx context.Context, input models.CreateWorkInput) (*models.Work, error)
	// Method Upload validate the work type and store the uploaded content.
	//
	// Returns the stored file's public URL path, original name and size.
	// No catalog record is created.
	Upload(workType models.WorkType, originalName string, r io.Reader) (*models.UploadResult, error)
	// Method IngestUpload run the combined flow: store the uploaded file and
	// create the catalog record referencing it, rolling the file back if the
	// record cannot be persisted.
	IngestUpload(ctx context.Context, input services.IngestInput, originalName string, file io.Reader) (*models.Work, error)
}

// AdminHandler handles administrative catalog HTTP requests
type AdminHandler struct {
	BaseHandler
	service AdminService
	authMw  func(http.Handler) http.Handler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, logger *zap.Logger, authMw func(http.Handler) http.Handler) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
		authMw:      authMw,
	}
}

// RegisterRoutes registers all admin routes behind the admin token middleware
// Note: This assumes the router is already scoped to /api
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.authMw)
		r.Post("/upload", h.Upload)
		r.Post("/works", h.CreateWork)
		r.Post("/works/upload-and-create", h.UploadAndCreate)
	})
}

// Upload handles POST /api/admin/upload
// @Summary Upload a file
// @Description Store an uploaded file under the type's public directory without creating a catalog record
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param type formData string true "Work type: image, novel or game"
// @Param file formData file true "File to upload"
// @Param X-Admin-Token header string true "Admin token"
// @Success 200 {object} Response{data=models.UploadResult} "Stored file info"
// @Failure 400 {object} Response "Missing file or invalid type"
// @Failure 401 {object} Response "Unauthorized"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/admin/upload [post]
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.Logger.Error("failed to parse multipart form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	workType := models.WorkType(r.FormValue("type"))

	result, err := h.service.Upload(workType, fileHeader.Filename, file)
	if err != nil {
		h.respondServiceError(w, err, "failed to store upload")
		return
	}

	h.RespondSuccess(w, http.StatusOK, result)
}

// CreateWork handles POST /api/admin/works
// @Summary Create a work
// @Description Create a catalog record from caller-supplied fields
// @Tags admin
// @Accept json
// @Produce json
// @Param work body models.CreateWorkInput true "Work fields"
// @Param X-Admin-Token header string true "Admin token"
// @Success 200 {object} Response{data=models.Work} "The created work"
// @Failure 400 {object} Response "Validation error"
// @Failure 401 {object} Response "Unauthorized"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/admin/works [post]
func (h *AdminHandler) CreateWork(w http.ResponseWriter, r *http.Request) {
	var input models.CreateWorkInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	work, err := h.service.CreateWork(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, err, "failed to create work")
		return
	}

	h.RespondSuccess(w, http.StatusOK, work)
}

// UploadAndCreate handles POST /api/admin/works/upload-and-create
// @Summary Upload a file and create its work record
// @Description Store an uploaded file and create the catalog record referencing it in one operation. The stored file is removed again if the record cannot be persisted.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param type formData string true "Work type: image, novel or game"
// @Param title formData string true "Work title"
// @Param description formData string false "Work description"
// @Param tags formData string false "Comma-separated tags"
// @Param cover formData string false "Cover URL; defaults to the uploaded file's URL"
// @Param file formData file true "File to upload"
// @Param X-Admin-Token header string true "Admin token"
// @Success 200 {object} Response{data=models.Work} "The created work"
// @Failure 400 {object} Response "Validation error"
// @Failure 401 {object} Response "Unauthorized"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/admin/works/upload-and-create [post]
func (h *AdminHandler) UploadAndCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.Logger.Error("failed to parse multipart form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	input := services.IngestInput{
		Type:        models.WorkType(r.FormValue("type")),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		Cover:       r.FormValue("cover"),
	}

	work, err := h.service.IngestUpload(r.Context(), input, fileHeader.Filename, file)
	if err != nil {
		h.respondServiceError(w, err, "failed to create work")
		return
	}

	h.RespondSuccess(w, http.StatusOK, work)
}

// respondServiceError maps a service error to the envelope: validation
// errors become 400 with their message, everything else 500.
func (h *AdminHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		h.RespondError(w, http.StatusBadRequest, vErr.Message)
		return
	}
	h.Logger.Error(fallback, zap.Error(err))
	h.RespondError(w, http.StatusInternalServerError, fallback)
}
