// Package storage keeps uploaded files (category, product and payment-proof
// images) on a pluggable disk.
//
// Two drivers are available:
//   - "local": a directory served by echo under /uploads (default)
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/HSouheill/shop_backoffice/config"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path. Local disks without a configured
	// public host return a root-relative URL such as /uploads/x.png.
	URL(path string) string
}

// New builds the disk selected by STORAGE_DISK.
func New(s config.Settings) (Disk, error) {
	switch strings.ToLower(s.StorageDisk) {
	case "", "local":
		baseURL := "/uploads"
		if s.PublicURL != "" {
			baseURL = s.PublicURL + "/uploads"
		}
		return NewLocalDisk(s.UploadDir, baseURL), nil
	case "s3":
		return NewS3Disk(context.Background(), S3Options{
			Bucket:   s.S3Bucket,
			Region:   s.S3Region,
			Key:      s.S3Key,
			Secret:   s.S3Secret,
			Endpoint: s.S3Endpoint,
			BaseURL:  s.S3URL,
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", s.StorageDisk)
	}
}
