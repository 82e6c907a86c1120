package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aishow/backend/internal/models"
	"go.uber.org/zap"
)

// WorkRepository is the interface that wraps methods for works collection data access
type WorkRepository interface {
	// Method List retrieve all works in insertion order, optionally filtered by type.
	//
	// An empty "typeFilter" parameter returns the full collection.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	List(ctx context.Context, typeFilter models.WorkType) ([]models.Work, error)
	// Method GetByID retrieve a work by its id.
	//
	// If no work with the given id exists, repositories.ErrWorkNotFound is returned.
	GetByID(ctx context.Context, id string) (*models.Work, error)
	// Method Create append a new work to the collection and persist it durably.
	//
	// The repository generates the id and createdAt fields and fills defaults
	// for optional fields. The record is persisted only if a nil error is returned.
	Create(ctx context.Context, input models.CreateWorkInput) (*models.Work, error)
}

// Storage defines the interface for uploaded file placement
type Storage interface {
	// Save writes uploaded content into the type's upload directory and
	// returns the public URL path of the stored file and its size.
	Save(workType models.WorkType, originalName string, r io.Reader) (string, int64, error)

	// Delete removes a stored file by its public URL path, best-effort.
	Delete(urlPath string)
}

// ValidationError reports caller input rejected before any side effect
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IngestInput carries the fields of the combined upload-and-create flow.
// Tags is the raw comma-separated form value.
type IngestInput struct {
	Type        models.WorkType
	Title       string
	Description string
	Tags        string
	Cover       string
}

// WorkService handles business logic for catalog operations
type WorkService struct {
	repo    WorkRepository
	storage Storage
	logger  *zap.Logger
}

// NewWorkService creates a new work service
func NewWorkService(repo WorkRepository, storage Storage, logger *zap.Logger) *WorkService {
	return &WorkService{
		repo:    repo,
		storage: storage,
		logger:  logger,
	}
}

// ListWorks retrieves works, optionally filtered by type. An unknown type
// value simply matches no works.
func (s *WorkService) ListWorks(ctx context.Context, typeParam string) ([]models.Work, error) {
	return s.repo.List(ctx, models.WorkType(typeParam))
}

// GetWork retrieves a single work by id
func (s *WorkService) GetWork(ctx context.Context, id string) (*models.Work, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateWork validates the input and creates a catalog record from
// caller-supplied fields, without any file upload.
func (s *WorkService) CreateWork(ctx context.Context, input models.CreateWorkInput) (*models.Work, error) {
	if !input.Type.IsValid() {
		return nil, &ValidationError{Message: "type must be image|novel|game"}
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Message: "title must be a non-empty string"}
	}

	work, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create work: %w", err)
	}
	return work, nil
}

// Upload validates the work type and stores the uploaded content, returning
// the stored file's public URL and size. No catalog record is created.
func (s *WorkService) Upload(workType models.WorkType, originalName string, r io.Reader) (*models.UploadResult, error) {
	if !workType.IsValid() {
		return nil, &ValidationError{Message: "type must be image|novel|game"}
	}

	url, size, err := s.storage.Save(workType, originalName, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	return &models.UploadResult{
		Type:         workType,
		URL:          url,
		OriginalName: originalName,
		Size:         size,
	}, nil
}

// IngestUpload runs the combined flow: store the uploaded file, then create
// the catalog record referencing it. Validation runs before the file write,
// so rejected input leaves nothing on disk. If the record cannot be
// persisted after the file was written, the file is deleted again before the
// error is returned; at no point does a persisted record reference a file
// that was never written.
func (s *WorkService) IngestUpload(ctx context.Context, input IngestInput, originalName string, file io.Reader) (*models.Work, error) {
	if !input.Type.IsValid() {
		return nil, &ValidationError{Message: "type must be image|novel|game"}
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Message: "title must be a non-empty string"}
	}

	url, _, err := s.storage.Save(input.Type, originalName, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	cover := input.Cover
	if cover == "" {
		cover = url
	}

	work, err := s.repo.Create(ctx, models.CreateWorkInput{
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		Tags:        ParseTags(input.Tags),
		Cover:       cover,
		Content:     models.ContentForUpload(input.Type, url),
	})
	if err != nil {
		// Compensating rollback: the stored file must not outlive a failed
		// record create.
		s.logger.Error("rolling back stored upload after failed record create",
			zap.String("url", url),
			zap.Error(err),
		)
		s.storage.Delete(url)
		return nil, fmt.Errorf("failed to create work: %w", err)
	}

	return work, nil
}

// ParseTags splits a comma-separated tag string, trimming whitespace and
// dropping empty segments while preserving order.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
