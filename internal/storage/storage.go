package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aishow/backend/internal/models"
	"go.uber.org/zap"
)

// typeSubdirs maps work types to their upload sub-path under the public root.
// The sub-path also appears in the public URL of every stored file.
var typeSubdirs = map[models.WorkType]string{
	models.WorkTypeImage: "images/uploads",
	models.WorkTypeNovel: "novels/uploads",
	models.WorkTypeGame:  "games/uploads",
}

// uploadStorage places uploaded files on the local filesystem under a
// public root directory, partitioned by work type.
type uploadStorage struct {
	publicDir string
	logger    *zap.Logger
}

// NewUploadStorage creates a new uploadStorage rooted at publicDir
func NewUploadStorage(publicDir string, logger *zap.Logger) *uploadStorage {
	return &uploadStorage{
		publicDir: publicDir,
		logger:    logger,
	}
}

// EnsureDirs eagerly creates the upload directory for every work type.
// Failures are logged, not escalated; a failed directory surfaces again on
// the first write into it.
func (s *uploadStorage) EnsureDirs() {
	for workType, subdir := range typeSubdirs {
		dir := filepath.Join(s.publicDir, filepath.FromSlash(subdir))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Error("failed to create upload directory",
				zap.String("type", string(workType)),
				zap.String("dir", dir),
				zap.Error(err),
			)
		}
	}
}

// Save writes the uploaded content into the type's upload directory and
// returns the public URL path of the stored file together with its size.
func (s *uploadStorage) Save(workType models.WorkType, originalName string, r io.Reader) (string, int64, error) {
	subdir, ok := typeSubdirs[workType]
	if !ok {
		return "", 0, fmt.Errorf("no upload directory for type %q", workType)
	}

	filename := BuildFileName(originalName)
	dir := filepath.Join(s.publicDir, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	dest := filepath.Join(dir, filename)
	f, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	size, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		// Never leave a half-written upload behind.
		os.Remove(dest)
		return "", 0, fmt.Errorf("failed to write upload file: %w", err)
	}

	return "/public/" + subdir + "/" + filename, size, nil
}

// Delete removes a previously stored file by its public URL path. It is
// best-effort: it only runs on compensating rollback, where a secondary
// error has no remedy for the caller, so failures are logged and swallowed.
func (s *uploadStorage) Delete(urlPath string) {
	rel := strings.TrimPrefix(urlPath, "/public/")
	if rel == urlPath {
		s.logger.Warn("refusing to delete path outside /public", zap.String("path", urlPath))
		return
	}

	full := filepath.Join(s.publicDir, filepath.FromSlash(rel))
	if escaped, err := filepath.Rel(s.publicDir, full); err != nil || strings.HasPrefix(escaped, "..") {
		s.logger.Warn("refusing to delete path escaping public root", zap.String("path", urlPath))
		return
	}

	if err := os.Remove(full); err != nil {
		s.logger.Error("failed to delete stored file", zap.String("path", full), zap.Error(err))
	}
}
