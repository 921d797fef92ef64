// Package upload stores admin-uploaded product images on local disk.
// In production this would hand files to a CDN or object store; the API
// surface (returned URL paths) stays the same either way.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage writes uploaded images into a directory served under /uploads.
type Storage struct {
	dir    string
	logger *zap.Logger
}

// NewStorage creates the upload directory if needed.
func NewStorage(dir string, logger *zap.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

// Dir returns the directory uploads are written to.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes the file under a collision-free name and returns the filename.
func (s *Storage) Save(r io.Reader, ext string) (string, error) {
	name := fmt.Sprintf("images-%s%s", uuid.New().String(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}

	s.logger.Debug("image stored", zap.String("filename", name))
	return name, nil
}
