package utils

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxThumbnailSize caps course thumbnail uploads
const MaxThumbnailSize = 5 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// ValidateImage checks extension and size of an uploaded image.
func ValidateImage(file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return fmt.Errorf("unsupported image type %q", ext)
	}
	if file.Size > MaxThumbnailSize {
		return fmt.Errorf("image exceeds %d MB", MaxThumbnailSize>>20)
	}
	return nil
}

// SaveUploadedFile stores file under destDir with a unique name and returns the stored file name.
func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return newFilename, nil
}

// GetFileURL maps a stored file name to its public URL
func GetFileURL(fileName string) string {
	if fileName == "" {
		return ""
	}
	return "/uploads/" + fileName
}

// RemoveUploadedFile deletes a stored file, ignoring missing files.
func RemoveUploadedFile(destDir, fileName string) {
	if fileName == "" {
		return
	}
	if err := os.Remove(filepath.Join(destDir, filepath.Base(fileName))); err != nil && !os.IsNotExist(err) {
		log.Printf("Error removing uploaded file %s: %v", fileName, err)
	}
}
