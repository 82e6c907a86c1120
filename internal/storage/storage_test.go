package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/aishow/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewUploadStorage(t *testing.T) {
	logger := zap.NewNop()

	s := NewUploadStorage("public", logger)

	assert.NotNil(t, s)
	assert.Equal(t, "public", s.publicDir)
	assert.Equal(t, logger, s.logger)
}

func TestUploadStorage_EnsureDirs(t *testing.T) {
	publicDir := t.TempDir()
	s := NewUploadStorage(publicDir, zap.NewNop())

	s.EnsureDirs()

	for _, subdir := range []string{"images/uploads", "novels/uploads", "games/uploads"} {
		info, err := os.Stat(filepath.Join(publicDir, filepath.FromSlash(subdir)))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent
	s.EnsureDirs()
}

func TestUploadStorage_Save(t *testing.T) {
	tests := []struct {
		name         string
		workType     models.WorkType
		originalName string
		urlPattern   string
	}{
		{
			name:         "image upload with whitespace in name",
			workType:     models.WorkTypeImage,
			originalName: "a b.png",
			urlPattern:   `^/public/images/uploads/\d+_a_b\.png$`,
		},
		{
			name:         "novel upload",
			workType:     models.WorkTypeNovel,
			originalName: "story.txt",
			urlPattern:   `^/public/novels/uploads/\d+_story\.txt$`,
		},
		{
			name:         "game upload",
			workType:     models.WorkTypeGame,
			originalName: "index.html",
			urlPattern:   `^/public/games/uploads/\d+_index\.html$`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publicDir := t.TempDir()
			s := NewUploadStorage(publicDir, zap.NewNop())
			content := "file content"

			url, size, err := s.Save(tt.workType, tt.originalName, strings.NewReader(content))
			require.NoError(t, err)

			assert.Regexp(t, regexp.MustCompile(tt.urlPattern), url)
			assert.Equal(t, int64(len(content)), size)

			// The URL path maps straight back to the file on disk
			onDisk := filepath.Join(publicDir, filepath.FromSlash(strings.TrimPrefix(url, "/public/")))
			data, err := os.ReadFile(onDisk)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))
		})
	}
}

func TestUploadStorage_Save_InvalidType(t *testing.T) {
	s := NewUploadStorage(t.TempDir(), zap.NewNop())

	url, size, err := s.Save(models.WorkType("video"), "clip.mp4", strings.NewReader("x"))

	assert.Error(t, err)
	assert.Empty(t, url)
	assert.Zero(t, size)
}

func TestUploadStorage_Delete(t *testing.T) {
	publicDir := t.TempDir()
	s := NewUploadStorage(publicDir, zap.NewNop())

	url, _, err := s.Save(models.WorkTypeImage, "gone.png", strings.NewReader("x"))
	require.NoError(t, err)

	s.Delete(url)

	onDisk := filepath.Join(publicDir, filepath.FromSlash(strings.TrimPrefix(url, "/public/")))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadStorage_Delete_BestEffort(t *testing.T) {
	publicDir := t.TempDir()
	s := NewUploadStorage(publicDir, zap.NewNop())

	// Nonexistent file, path outside /public, path escaping the root:
	// none of these may panic or touch anything else.
	s.Delete("/public/images/uploads/never_existed.png")
	s.Delete("/etc/passwd")
	s.Delete("/public/../outside.txt")
}

func TestUploadStorage_Delete_DoesNotEscapeRoot(t *testing.T) {
	base := t.TempDir()
	publicDir := filepath.Join(base, "public")
	require.NoError(t, os.MkdirAll(publicDir, 0o755))

	victim := filepath.Join(base, "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep me"), 0o644))

	s := NewUploadStorage(publicDir, zap.NewNop())
	s.Delete("/public/../victim.txt")

	_, err := os.Stat(victim)
	assert.NoError(t, err)
}

func TestBuildFileName(t *testing.T) {
	tests := []struct {
		name         string
		originalName string
		suffix       string
	}{
		{name: "plain name", originalName: "cover.png", suffix: "_cover.png"},
		{name: "spaces replaced", originalName: "a b c.png", suffix: "_a_b_c.png"},
		{name: "tabs and runs of whitespace", originalName: "a \t b.txt", suffix: "_a_b.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := BuildFileName(tt.originalName)

			assert.Regexp(t, `^\d+_`, filename)
			assert.True(t, strings.HasSuffix(filename, tt.suffix), "got %q", filename)
		})
	}
}
