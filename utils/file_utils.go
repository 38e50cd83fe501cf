package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (10MB)
	maxFileSize = 10 * 1024 * 1024
)

// Allowed receipt image extensions
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// InitializeStorage creates the directories for uploaded files
func InitializeStorage() error {
	dirs := []string{
		uploadBaseDir,
		filepath.Join(uploadBaseDir, "receipts"),
		filepath.Join(uploadBaseDir, "payouts"),
		filepath.Join(uploadBaseDir, "thumbnails"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// SaveUploadedImage stores an uploaded image under uploads/<subDir> with a
// generated filename and returns the URL it is served from.
func SaveUploadedImage(file *multipart.FileHeader, subDir string) (string, error) {
	if file.Size > maxFileSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	filename := uuid.New().String() + ext
	dir := filepath.Join(uploadBaseDir, subDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", dir, err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", baseURL, subDir, filename), nil
}

// GenerateImageThumbnail produces a 320px-wide thumbnail for a stored image
// and returns its URL. The original is left untouched.
func GenerateImageThumbnail(imageURL string) (string, error) {
	imagePath := strings.TrimPrefix(imageURL, baseURL+"/")
	fullPath := filepath.Join(uploadBaseDir, imagePath)

	img, err := imaging.Open(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %v", err)
	}

	// Resize to max width of 320px while maintaining aspect ratio
	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)

	name := filepath.Base(imagePath)
	thumbnailName := strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	thumbnailPath := filepath.Join(uploadBaseDir, "thumbnails", thumbnailName)

	if err := os.MkdirAll(filepath.Dir(thumbnailPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %v", err)
	}
	if err := imaging.Save(resized, thumbnailPath, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %v", err)
	}

	return fmt.Sprintf("%s/thumbnails/%s", baseURL, thumbnailName), nil
}
