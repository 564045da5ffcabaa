package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillpivot/api/internal/pkg/logger"
)

// PublicPrefix is the URL path the local store is served under.
const PublicPrefix = "/uploads"

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the storage root if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// BasePath is the directory served under PublicPrefix.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Store writes the upload below the category directory and returns its
// relative URL, e.g. /uploads/nic/12_nic_<uuid>.pdf.
func (ls *LocalStorage) Store(ctx context.Context, category Category, ownerID int64, fileHeader *multipart.FileHeader) (string, error) {
	if err := checkUpload(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := objectKey(category, ownerID, fileHeader.Filename)
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create upload directory")
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err = io.Copy(dst, file); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}

	url := PublicPrefix + "/" + key
	logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("File saved")
	return url, nil
}

// Delete removes a file previously returned by Store. Missing files and URLs
// outside the store are ignored.
func (ls *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	path, ok := ls.physicalPath(fileURL)
	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("path", path).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (ls *LocalStorage) physicalPath(fileURL string) (string, bool) {
	rel := strings.TrimPrefix(fileURL, PublicPrefix+"/")
	if rel == fileURL || rel == "" {
		return "", false
	}
	rel = filepath.Clean(filepath.FromSlash(rel))
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", false
	}
	return filepath.Join(ls.basePath, rel), true
}
