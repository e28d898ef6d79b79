package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest KYC document accepted.
const MaxUploadSize = 2 << 20

var allowedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// CheckUpload rejects files that are empty, too large or not an image or PDF.
func CheckUpload(file *multipart.FileHeader) error {
	if file == nil || file.Size == 0 {
		return fmt.Errorf("file is required")
	}
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file must not exceed 2MB")
	}
	if _, ok := allowedUploadTypes[contentType(file)]; !ok {
		return fmt.Errorf("only JPG, PNG or PDF files are allowed")
	}
	return nil
}

func contentType(file *multipart.FileHeader) string {
	ct := strings.ToLower(file.Header.Get("Content-Type"))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// SaveUploadedFile copies the upload into destDir under a random name and
// returns the stored path.
func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	ext, ok := allowedUploadTypes[contentType(file)]
	if !ok {
		ext = strings.ToLower(filepath.Ext(file.Filename))
	}
	filePath := filepath.Join(destDir, uuid.NewString()+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", err
	}
	return filePath, nil
}

// GetFileURL maps a stored path to the public /uploads URL.
func GetFileURL(uploadDir, filePath string) string {
	if filePath == "" {
		return ""
	}
	rel, err := filepath.Rel(uploadDir, filePath)
	if err != nil {
		rel = filepath.Base(filePath)
	}
	return "/uploads/" + filepath.ToSlash(rel)
}
