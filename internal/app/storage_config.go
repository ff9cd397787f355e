package app

import (
	"fmt"
	"strings"

	"github.com/startin-app/startin/internal/storage"
)

// BuildStorage constructs the configured resume storage backend.
func (c StorageConfig) BuildStorage() (storage.Storage, error) {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", "local":
		path := c.Local.Path
		if path == "" {
			path = "./data/resumes"
		}
		return storage.NewLocalStorage(path)
	case "s3":
		return storage.NewS3Storage(storage.S3Config{
			Bucket:          c.S3.Bucket,
			Region:          c.S3.Region,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			ForcePathStyle:  c.S3.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", c.Driver)
	}
}

// MaxUploadBytes returns the configured upload cap with fallback.
func (c StorageConfig) MaxUploadBytes() int64 {
	if c.Limits.MaxUploadBytes <= 0 {
		return 10 << 20
	}
	return c.Limits.MaxUploadBytes
}
