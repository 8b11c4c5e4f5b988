package services

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	apperr "inkwell/internal/errors"
	"inkwell/internal/utils"
)

// Upload extensions accepted for post images.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".svg":  true,
}

// UploadDir returns the root directory for stored uploads.
func UploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return dir
}

// IsAllowedImage checks the filename against the extension allow-list.
func IsAllowedImage(filename string) bool {
	return allowedImageExts[strings.ToLower(filepath.Ext(filename))]
}

// SaveImage stores an uploaded post image on disk and returns its public
// path. Files outside the extension allow-list are rejected before anything
// is written.
func SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", &apperr.ValidationError{Field: "image", Message: "unsupported image type " + ext}
	}

	dir := filepath.Join(UploadDir(), "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := utils.RandString(12) + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return "/media/posts/" + name, nil
}
