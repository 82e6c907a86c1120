package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/aishow/backend/internal/handlers"
	"github.com/aishow/backend/internal/middleware"
	"github.com/aishow/backend/internal/models"
	"github.com/aishow/backend/internal/repositories"
	"github.com/aishow/backend/internal/services"
	"github.com/aishow/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminToken = "integration-admin-token"

// setupServer wires a real router against temp-dir storage, mirroring the
// production wiring in cmd/main.go
func setupServer(t *testing.T, dataFile, publicDir string) chi.Router {
	t.Helper()

	logger := zap.NewNop()

	uploadStorage := storage.NewUploadStorage(publicDir, logger)
	uploadStorage.EnsureDirs()

	workRepo := repositories.NewWorkRepository(dataFile, logger)
	workService := services.NewWorkService(workRepo, uploadStorage, logger)

	worksHandler := handlers.NewWorksHandler(workService, logger)
	adminHandler := handlers.NewAdminHandler(workService, logger, middleware.AdminTokenMiddleware(adminToken))

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		worksHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)
	})
	return r
}

func setupDefaultServer(t *testing.T) (chi.Router, string) {
	t.Helper()
	tmp := t.TempDir()
	return setupServer(t, filepath.Join(tmp, "data", "works.json"), filepath.Join(tmp, "public")), filepath.Join(tmp, "public")
}

// multipartBody builds a multipart body with form fields and one file part
func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func decodeWork(t *testing.T, body []byte) models.Work {
	t.Helper()
	var resp struct {
		Success bool        `json:"success"`
		Data    models.Work `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestHealth(t *testing.T) {
	router, _ := setupDefaultServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestGetWork_NotFound(t *testing.T) {
	router, _ := setupDefaultServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/works/work_missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"work not found"}`, rec.Body.String())
}

func TestAdminRoutes_RejectWithoutToken(t *testing.T) {
	router, _ := setupDefaultServer(t)

	for _, target := range []string{
		"/api/admin/upload",
		"/api/admin/works",
		"/api/admin/works/upload-and-create",
	} {
		t.Run(target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(nil))
			req.Header.Set("X-Admin-Token", "wrong-token")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestCreateWork_Defaulting(t *testing.T) {
	router, _ := setupDefaultServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/works",
		bytes.NewReader([]byte(`{"type":"game","title":"X"}`)))
	req.Header.Set("X-Admin-Token", adminToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Check the raw shape: defaults must serialize as "", [] and {}
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &raw))
	assert.JSONEq(t, `""`, string(raw["description"]))
	assert.JSONEq(t, `[]`, string(raw["tags"]))
	assert.JSONEq(t, `""`, string(raw["cover"]))
	assert.JSONEq(t, `{}`, string(raw["content"]))
}

func TestUploadAndCreate_Scenario(t *testing.T) {
	router, publicDir := setupDefaultServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"type":  "image",
		"title": "Sunset",
		"tags":  "nature, art",
	}, "a b.png", "png bytes")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/works/upload-and-create", body)
	req.Header.Set("X-Admin-Token", adminToken)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	work := decodeWork(t, rec.Body.Bytes())

	assert.Equal(t, models.WorkTypeImage, work.Type)
	assert.Equal(t, "Sunset", work.Title)
	assert.Equal(t, []string{"nature", "art"}, work.Tags)

	require.Len(t, work.Content.Images, 1)
	url := work.Content.Images[0]
	assert.Regexp(t, regexp.MustCompile(`^/public/images/uploads/\d+_a_b\.png$`), url)
	assert.Equal(t, url, work.Cover)

	// The referenced file exists on disk
	onDisk := filepath.Join(publicDir, "images", "uploads", filepath.Base(url))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	// Round-trip through the read API
	req = httptest.NewRequest(http.MethodGet, "/api/works/"+work.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, work, decodeWork(t, rec.Body.Bytes()))

	// And through the type filter
	req = httptest.NewRequest(http.MethodGet, "/api/works?type=image", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Success bool          `json:"success"`
		Data    []models.Work `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	assert.Equal(t, work, listResp.Data[0])
}

func TestUploadAndCreate_ValidationLeavesNoFile(t *testing.T) {
	router, publicDir := setupDefaultServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"type": "image",
		// no title
	}, "orphan.png", "x")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/works/upload-and-create", body)
	req.Header.Set("X-Admin-Token", adminToken)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	entries, err := os.ReadDir(filepath.Join(publicDir, "images", "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadAndCreate_RollbackOnRecordFault(t *testing.T) {
	tmp := t.TempDir()
	publicDir := filepath.Join(tmp, "public")

	// A regular file in place of the data directory makes every collection
	// write fail after the upload has been stored
	blocker := filepath.Join(tmp, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	router := setupServer(t, filepath.Join(blocker, "works.json"), publicDir)

	body, contentType := multipartBody(t, map[string]string{
		"type":  "image",
		"title": "Doomed",
	}, "doomed.png", "x")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/works/upload-and-create", body)
	req.Header.Set("X-Admin-Token", adminToken)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"failed to create work"}`, rec.Body.String())

	// Compensating deletion removed the stored upload
	entries, err := os.ReadDir(filepath.Join(publicDir, "images", "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_ThenCreateReferencingIt(t *testing.T) {
	router, publicDir := setupDefaultServer(t)

	body, contentType := multipartBody(t, map[string]string{"type": "novel"}, "story.txt", "once upon a time")
	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", body)
	req.Header.Set("X-Admin-Token", adminToken)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var uploadResp struct {
		Success bool                `json:"success"`
		Data    models.UploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploadResp))
	require.True(t, uploadResp.Success)
	assert.Equal(t, models.WorkTypeNovel, uploadResp.Data.Type)
	assert.Equal(t, "story.txt", uploadResp.Data.OriginalName)
	assert.Equal(t, int64(len("once upon a time")), uploadResp.Data.Size)
	assert.Regexp(t, regexp.MustCompile(`^/public/novels/uploads/\d+_story\.txt$`), uploadResp.Data.URL)

	_, err := os.Stat(filepath.Join(publicDir, "novels", "uploads", filepath.Base(uploadResp.Data.URL)))
	require.NoError(t, err)

	// Create a record referencing the separately uploaded file
	createBody, err := json.Marshal(map[string]any{
		"type":    "novel",
		"title":   "Story",
		"cover":   uploadResp.Data.URL,
		"content": map[string]any{"file": uploadResp.Data.URL},
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/works", bytes.NewReader(createBody))
	req.Header.Set("X-Admin-Token", adminToken)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	work := decodeWork(t, rec.Body.Bytes())
	assert.Equal(t, uploadResp.Data.URL, work.Content.File)
	assert.Equal(t, uploadResp.Data.URL, work.Cover)
}

func TestUpload_BadType(t *testing.T) {
	router, _ := setupDefaultServer(t)

	body, contentType := multipartBody(t, map[string]string{"type": "video"}, "clip.mp4", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", body)
	req.Header.Set("X-Admin-Token", adminToken)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"type must be image|novel|game"}`, rec.Body.String())
}
