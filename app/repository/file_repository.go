package repository

import (
	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
)

// fileRepository implements the FileRepository interface
type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new file repository instance
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// Create inserts a new file row
func (r *fileRepository) Create(file *models.File) error {
	return r.db.Create(file).Error
}

// GetByID retrieves a file by internal ID
func (r *fileRepository) GetByID(id uint) (*models.File, error) {
	var file models.File
	err := r.db.First(&file, id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByUserID returns all files owned by a user, newest first
func (r *fileRepository) ListByUserID(userID uint) ([]models.File, error) {
	var files []models.File
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

// Delete soft-deletes a file row
func (r *fileRepository) Delete(id uint) error {
	return r.db.Delete(&models.File{}, id).Error
}
