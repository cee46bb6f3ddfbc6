package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AvatarStorage saves and removes uploaded images. Keys are slash
// separated paths relative to the storage root.
type AvatarStorage interface {
	SaveFile(ctx context.Context, subDir, originalFilename string, reader io.Reader) (string, error)
	DeleteFile(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// FileStorage keeps uploads on local disk under BaseDir and serves them
// from BaseURL + "/uploads/".
type FileStorage struct {
	BaseDir string
	BaseURL string
}

var _ AvatarStorage = (*FileStorage)(nil)

func NewFileStorage(baseDir, baseURL string) *FileStorage {
	return &FileStorage{BaseDir: baseDir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func uniqueName(originalFilename string) string {
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(originalFilename)))
}

// SaveFile writes reader to <BaseDir>/<subDir>/<unique name> and returns the key.
func (fs *FileStorage) SaveFile(_ context.Context, subDir, originalFilename string, reader io.Reader) (string, error) {
	dir := filepath.Join(fs.BaseDir, subDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	name := uniqueName(originalFilename)
	fullPath := filepath.Join(dir, name)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", fullPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", fmt.Errorf("write file %s: %w", fullPath, err)
	}
	return filepath.ToSlash(filepath.Join(subDir, name)), nil
}

// DeleteFile removes the file for key. Missing files are not an error.
func (fs *FileStorage) DeleteFile(_ context.Context, key string) error {
	fullPath := filepath.Join(fs.BaseDir, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file %s: %w", fullPath, err)
	}
	return nil
}

func (fs *FileStorage) URL(_ context.Context, key string) (string, error) {
	return fs.BaseURL + "/uploads/" + key, nil
}
