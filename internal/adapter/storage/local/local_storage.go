package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DiskStorage keeps uploads on the local filesystem under root. Returned paths
// are relative to the public prefix the static file server is mounted on.
type DiskStorage struct {
	root   string
	prefix string
	logger *logger.Logger
}

func NewDiskStorage(root, publicPrefix string, log *logger.Logger) (*DiskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root %s: %w", root, err)
	}
	return &DiskStorage{
		root:   root,
		prefix: strings.Trim(publicPrefix, "/"),
		logger: log.Named("DiskStorage"),
	}, nil
}

func (s *DiskStorage) Root() string { return s.root }

func (s *DiskStorage) Save(ctx context.Context, dir, originalName, contentType string, r io.Reader, size int64) (string, error) {
	dir = path.Clean("/" + dir)[1:]
	if err := os.MkdirAll(filepath.Join(s.root, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	rel := path.Join(dir, name)
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", rel, err)
	}
	written, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write upload %s: %w", rel, err)
	}

	s.logger.Debug("Stored upload",
		zap.String("path", rel),
		zap.String("original_filename", originalName),
		zap.String("content_type", contentType),
		zap.Int64("size_bytes", written),
	)
	return path.Join(s.prefix, rel), nil
}

// Remove deletes a file previously returned by Save. Paths outside the upload
// root are refused.
func (s *DiskStorage) Remove(ctx context.Context, stored string) error {
	rel := strings.TrimPrefix(path.Clean("/"+stored), "/")
	if s.prefix != "" {
		if !strings.HasPrefix(rel, s.prefix+"/") {
			return fmt.Errorf("path %q is not managed by this storage", stored)
		}
		rel = strings.TrimPrefix(rel, s.prefix+"/")
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Upload already removed", zap.String("path", stored))
			return nil
		}
		s.logger.Warn("Failed to remove upload", zap.String("path", stored), zap.Error(err))
		return fmt.Errorf("remove upload %s: %w", stored, err)
	}
	s.logger.Debug("Removed upload", zap.String("path", stored))
	return nil
}
