package objectstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/saasbase-io/saasbase/internal/pkg/env"
)

// Config holds the S3 settings for the object store. One bucket carries
// both user file uploads and archived GDPR exports, separated by key
// prefix.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-west-001"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("S3_STORAGE_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when S3 storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when S3 storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when S3 storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the object store is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}

// GetBucketName returns the bucket name as configured (no automatic prefixing)
func (c *Config) GetBucketName() string {
	return c.BucketName
}

// ExportKey generates the object key for an archived data export.
// Format: exports/YYYY/MM/<archive-id>.json
func ExportKey(archiveID string, at time.Time) string {
	return fmt.Sprintf("exports/%04d/%02d/%s.json", at.Year(), int(at.Month()), archiveID)
}

// FileKey generates the object key for a user file upload.
// Format: uploads/<user-id>/<file-id>
func FileKey(userID uint, fileID string) string {
	return fmt.Sprintf("uploads/%d/%s", userID, fileID)
}
