package controllers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/app/repository"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/objectstore"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

const maxUploadSize = 25 << 20 // 25 MB

// FileController serves user file upload and download backed by the
// object store.
type FileController struct {
	files repository.FileRepository
	store objectstore.Storage // nil when the object store is disabled
}

func NewFileController(files repository.FileRepository, store objectstore.Storage) *FileController {
	return &FileController{files: files, store: store}
}

// HandleUpload stores a multipart file for the logged-in user.
func (fc *FileController) HandleUpload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if fc.store == nil {
		return renderError(c, apperr.External("file storage is not configured", nil))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return renderError(c, apperr.Validation("file is required"))
	}
	if fileHeader.Size > maxUploadSize {
		return renderError(c, apperr.Validation("file exceeds the 25 MB limit"))
	}
	if fileHeader.Filename == "" {
		return renderError(c, apperr.Validation("file name is required"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return renderError(c, apperr.Validation("file could not be read"))
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return renderError(c, apperr.Validation("file could not be read"))
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}

	key := objectstore.FileKey(userCtx.UserID, uuid.NewString())
	if err := fc.store.Put(c.UserContext(), key, data, contentType); err != nil {
		return renderError(c, apperr.External("file upload failed", err))
	}

	file := &models.File{
		UserID:      userCtx.UserID,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		ObjectKey:   key,
	}
	if err := fc.files.Create(file); err != nil {
		// The object is unreachable without its row; clean it up.
		if delErr := fc.store.Delete(c.UserContext(), key); delErr != nil {
			log.Warnf("[Files] orphaned object %s after failed insert: %v", key, delErr)
		}
		return renderError(c, apperr.Database("file record creation failed", err))
	}

	return renderSuccess(c, fiber.Map{
		"id":          file.ID,
		"fileName":    file.FileName,
		"size":        file.Size,
		"contentType": file.ContentType,
	})
}

// HandleDownload streams a stored file back to its owner.
func (fc *FileController) HandleDownload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	file, err := fc.lookupOwned(c, userCtx)
	if err != nil {
		return renderError(c, err)
	}

	data, contentType, err := fc.store.Get(c.UserContext(), file.ObjectKey)
	if err != nil {
		return renderError(c, apperr.External("file download failed", err))
	}
	if contentType == "" {
		contentType = file.ContentType
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	return c.Send(data)
}

// HandleListFiles returns the logged-in user's files, newest first.
func (fc *FileController) HandleListFiles(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	files, err := fc.files.ListByUserID(userCtx.UserID)
	if err != nil {
		return renderError(c, apperr.Database("file listing failed", err))
	}

	items := make([]fiber.Map, 0, len(files))
	for _, f := range files {
		items = append(items, fiber.Map{
			"id":          f.ID,
			"fileName":    f.FileName,
			"size":        f.Size,
			"contentType": f.ContentType,
			"uploadedAt":  f.CreatedAt,
		})
	}

	return renderSuccess(c, fiber.Map{"items": items})
}

// HandleDeleteFile removes a stored file and its object.
func (fc *FileController) HandleDeleteFile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	file, err := fc.lookupOwned(c, userCtx)
	if err != nil {
		return renderError(c, err)
	}

	if err := fc.store.Delete(c.UserContext(), file.ObjectKey); err != nil {
		return renderError(c, apperr.External("file deletion failed", err))
	}
	if err := fc.files.Delete(file.ID); err != nil {
		return renderError(c, apperr.Database("file record deletion failed", err))
	}

	return renderSuccess(c, fiber.Map{"deleted": true})
}

// lookupOwned resolves the :id param to a file the requester may
// access. A foreign file reads as not-found so ids don't leak.
func (fc *FileController) lookupOwned(c *fiber.Ctx, userCtx usercontext.UserContext) (*models.File, error) {
	if fc.store == nil {
		return nil, apperr.External("file storage is not configured", nil)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, apperr.Validation("invalid file id")
	}

	file, err := fc.files.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("file not found")
		}
		return nil, apperr.Database("file lookup failed", err)
	}
	if file.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return nil, apperr.NotFound("file not found")
	}

	return file, nil
}
