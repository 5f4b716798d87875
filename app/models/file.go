package models

import (
	"time"

	"gorm.io/gorm"
)

// File is a user-uploaded object. The row carries ownership and
// metadata; the bytes live in the object store under ObjectKey.
type File struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	FileName    string         `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType string         `gorm:"type:varchar(100)" json:"content_type"`
	Size        int64          `gorm:"not null;default:0" json:"size"`
	ObjectKey   string         `gorm:"type:varchar(300);not null;uniqueIndex:ux_files_object_key" json:"-"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
