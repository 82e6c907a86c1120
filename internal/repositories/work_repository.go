package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aishow/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrWorkNotFound is returned when no work with the requested id exists.
var ErrWorkNotFound = errors.New("work not found")

// workRepository stores the works collection as a single JSON file. Every
// read loads the full collection from disk and every create rewrites it, so
// the file stays the sole source of truth. Creates serialize through a mutex
// because the read-modify-write cycle is not safe under concurrent writers.
type workRepository struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewWorkRepository creates a new work repository backed by the JSON file at path
func NewWorkRepository(path string, logger *zap.Logger) *workRepository {
	return &workRepository{
		path:   path,
		logger: logger,
	}
}

// List retrieves all works in insertion order, optionally filtered by type
// An empty typeFilter returns the full collection.
func (r *workRepository) List(ctx context.Context, typeFilter models.WorkType) ([]models.Work, error) {
	works, err := r.readAll()
	if err != nil {
		return nil, err
	}

	if typeFilter == "" {
		return works, nil
	}

	filtered := make([]models.Work, 0, len(works))
	for _, w := range works {
		if w.Type == typeFilter {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

// GetByID retrieves a work by its id
func (r *workRepository) GetByID(ctx context.Context, id string) (*models.Work, error) {
	works, err := r.readAll()
	if err != nil {
		return nil, err
	}

	for i := range works {
		if works[i].ID == id {
			return &works[i], nil
		}
	}
	return nil, ErrWorkNotFound
}

// Create appends a new work to the collection and rewrites it durably.
// It generates the id and createdAt timestamp and fills defaults for the
// optional fields; the caller must not assume the record was persisted
// unless a nil error is returned.
func (r *workRepository) Create(ctx context.Context, input models.CreateWorkInput) (*models.Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	works, err := r.readAll()
	if err != nil {
		return nil, err
	}

	work := models.Work{
		ID:          r.generateID(works),
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		Tags:        input.Tags,
		Cover:       input.Cover,
		Content:     input.Content,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if work.Tags == nil {
		work.Tags = []string{}
	}

	works = append(works, work)
	if err := r.writeAll(works); err != nil {
		return nil, err
	}

	return &work, nil
}

// generateID builds a timestamp-based id. If a work created within the same
// millisecond already took the base id, an 8-char random suffix keeps the id
// unique; creates are serialized by the repository mutex, so checking the
// in-memory collection is sufficient.
func (r *workRepository) generateID(works []models.Work) string {
	id := fmt.Sprintf("work_%d", time.Now().UnixMilli())
	for _, w := range works {
		if w.ID == id {
			return fmt.Sprintf("%s_%s", id, uuid.NewString()[:8])
		}
	}
	return id
}

// readAll loads the full collection from disk. A missing data file reads as
// an empty collection so a fresh deployment needs no seed file.
func (r *workRepository) readAll() ([]models.Work, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Work{}, nil
		}
		r.logger.Error("failed to read works collection", zap.String("path", r.path), zap.Error(err))
		return nil, fmt.Errorf("failed to read works collection: %w", err)
	}

	var works []models.Work
	if err := json.Unmarshal(data, &works); err != nil {
		r.logger.Error("failed to parse works collection", zap.String("path", r.path), zap.Error(err))
		return nil, fmt.Errorf("failed to parse works collection: %w", err)
	}
	return works, nil
}

// writeAll rewrites the full collection using a temp file and rename, so a
// crash mid-write never leaves a truncated collection behind.
func (r *workRepository) writeAll(works []models.Work) error {
	data, err := json.MarshalIndent(works, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode works collection: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write works collection: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace works collection: %w", err)
	}
	return nil
}
