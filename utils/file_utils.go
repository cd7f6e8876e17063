package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Maximum file size (10MB)
	maxFileSize = 10 * 1024 * 1024
	// Raster images larger than this on either side are downscaled.
	maxImageDimension = 1600
)

var (
	// Allowed image extensions
	allowedImageExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".svg":  true,
		".webp": true,
	}
	// Extensions imaging can decode and re-encode without losing anything
	// that matters (gif animation and webp are stored as uploaded).
	resizableExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}

	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return unsafeFilenameChars.ReplaceAllString(filename, "")
}

// ValidateFileType checks if the file extension is an allowed image format
func ValidateFileType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif, svg, webp")
	}
	return nil
}

// GenerateFilename returns a collision-free name that still carries the
// uploaded file's (cleaned) name, e.g. 6f1c...-shoes.png.
func GenerateFilename(original string) string {
	clean := strings.ToLower(cleanFilename(original))
	if clean == "" || clean == "." {
		clean = "file"
	}
	return uuid.NewString() + "-" + clean
}

// PrepareImage validates an upload and downscales large raster images. It
// returns the bytes to store and their content type.
func PrepareImage(data []byte, filename string) ([]byte, string, error) {
	if len(data) > maxFileSize {
		return nil, "", fmt.Errorf("file too large. Maximum size is %d bytes", maxFileSize)
	}
	if err := ValidateFileType(filename); err != nil {
		return nil, "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mime.TypeByExtension(ext)
	if ext == ".svg" {
		contentType = "image/svg+xml"
	}
	if !resizableExts[ext] {
		return data, contentType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("invalid image: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxImageDimension && bounds.Dy() <= maxImageDimension {
		return data, contentType, nil
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, "", err
	}
	resized := imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %v", err)
	}
	return buf.Bytes(), contentType, nil
}

// UploadImage validates the multipart file, writes it under dir on disk and
// returns the stored key (dir/filename).
func UploadImage(ctx context.Context, disk storage.Disk, file *multipart.FileHeader, dir string) (string, error) {
	if file.Size > maxFileSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", maxFileSize)
	}
	if err := ValidateFileType(file.Filename); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	raw, err := io.ReadAll(io.LimitReader(src, maxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %v", err)
	}

	data, contentType, err := PrepareImage(raw, file.Filename)
	if err != nil {
		return "", err
	}

	key := path.Join(dir, GenerateFilename(file.Filename))
	if err := disk.Put(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// RemoveFile deletes a stored upload, returning any error for the caller to
// log. Empty keys and absolute URLs (not ours to delete) are ignored.
func RemoveFile(ctx context.Context, disk storage.Disk, key string) error {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return nil
	}
	return disk.Delete(ctx, key)
}

// AbsoluteURL turns a stored key into a URL a browser can load. Root-relative
// URLs from the local disk are prefixed with the request's scheme and host.
func AbsoluteURL(disk storage.Disk, scheme, host, key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	u := disk.URL(key)
	if strings.HasPrefix(u, "/") {
		return scheme + "://" + host + u
	}
	return u
}
