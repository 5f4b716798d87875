package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

type fakeStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.objects[key] = append([]byte(nil), data...)
	s.types[key] = contentType
	return nil
}

func (s *fakeStorage) Get(ctx context.Context, key string) ([]byte, string, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, "", errors.New("no such key")
	}
	return data, s.types[key], nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

type fakeFileRepo struct {
	files  map[uint]*models.File
	nextID uint
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[uint]*models.File{}}
}

func (r *fakeFileRepo) Create(file *models.File) error {
	r.nextID++
	file.ID = r.nextID
	r.files[file.ID] = file
	return nil
}

func (r *fakeFileRepo) GetByID(id uint) (*models.File, error) {
	if f, ok := r.files[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFileRepo) ListByUserID(userID uint) ([]models.File, error) {
	var out []models.File
	for _, f := range r.files {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) Delete(id uint) error {
	delete(r.files, id)
	return nil
}

func newFilesApp(repo *fakeFileRepo, storage *fakeStorage, userID uint) *fiber.App {
	// A typed nil *fakeStorage would make the interface non-nil, so the
	// disabled case passes an untyped nil.
	fc := NewFileController(repo, nil)
	if storage != nil {
		fc = NewFileController(repo, storage)
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		usercontext.Set(c, usercontext.UserContext{
			UserID:     userID,
			Email:      "jo@example.com",
			Name:       "Jo Smith",
			IsLoggedIn: true,
		})
		return c.Next()
	})
	app.Post("/api/v1/files", fc.HandleUpload)
	app.Get("/api/v1/files", fc.HandleListFiles)
	app.Get("/api/v1/files/:id", fc.HandleDownload)
	app.Delete("/api/v1/files/:id", fc.HandleDeleteFile)
	return app
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	repo := newFakeFileRepo()
	storage := newFakeStorage()
	app := newFilesApp(repo, storage, 42)

	body, contentType := multipartUpload(t, "notes.txt", []byte("hello object store"))
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/files", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	uploaded := decodeBody(t, resp.Body)["data"].(map[string]any)
	assert.Equal(t, "notes.txt", uploaded["fileName"])
	assert.Equal(t, float64(len("hello object store")), uploaded["size"])
	require.Len(t, storage.objects, 1)

	dlResp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/files/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, dlResp.StatusCode)
	assert.Contains(t, dlResp.Header.Get(fiber.HeaderContentDisposition), `filename="notes.txt"`)

	got, err := io.ReadAll(dlResp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello object store"), got)
}

func TestUploadWithoutFileGets400(t *testing.T) {
	app := newFilesApp(newFakeFileRepo(), newFakeStorage(), 42)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/files", bytes.NewBufferString("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	errObj := decodeBody(t, resp.Body)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["type"])
}

func TestDownloadForeignFileReadsAsNotFound(t *testing.T) {
	repo := newFakeFileRepo()
	storage := newFakeStorage()
	require.NoError(t, storage.Put(context.Background(), "uploads/7/abc", []byte("secret"), "text/plain"))
	require.NoError(t, repo.Create(&models.File{
		UserID:    7,
		FileName:  "secret.txt",
		ObjectKey: "uploads/7/abc",
	}))

	app := newFilesApp(repo, storage, 42)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/files/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	errObj := decodeBody(t, resp.Body)["error"].(map[string]any)
	assert.Equal(t, "RESOURCE_NOT_FOUND", errObj["type"])
}

func TestDeleteFileRemovesObject(t *testing.T) {
	repo := newFakeFileRepo()
	storage := newFakeStorage()
	app := newFilesApp(repo, storage, 42)

	body, contentType := multipartUpload(t, "old.bin", []byte{0x1, 0x2})
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/files", body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	delResp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/api/v1/files/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, delResp.StatusCode)

	assert.Empty(t, storage.objects)
	assert.Empty(t, repo.files)
}

func TestUploadWithoutStorageConfigured(t *testing.T) {
	app := newFilesApp(newFakeFileRepo(), nil, 42)

	body, contentType := multipartUpload(t, "notes.txt", []byte("x"))
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/files", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	errObj := decodeBody(t, resp.Body)["error"].(map[string]any)
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR", errObj["type"])
}