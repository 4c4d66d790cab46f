package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrS3NotConfigured is returned when S3 operations are attempted
// without proper configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// LocalStorage implements the Storage interface using local disk.
// Artifacts are stored flat in a configurable directory, named by
// job ID prefix, and do not support S3 operations unless wrapped with
// S3Storage.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a new LocalStorage instance. If dir is
// empty a directory under os.TempDir() is used. The directory is
// created if it doesn't exist.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "petroast", "videos")
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

// Dir returns the storage directory path.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// SaveArtifact writes data to dir/filename and returns the path.
func (s *LocalStorage) SaveArtifact(ctx context.Context, filename string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	path := filepath.Join(s.dir, filepath.Base(filename))

	f, err := os.Create(path) // #nosec G304 - path is confined to the storage dir
	if err != nil {
		return "", fmt.Errorf("create artifact file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write artifact file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close artifact file: %w", err)
	}

	return path, nil
}

// FindArtifact looks for a previously saved artifact with the job ID
// prefix. The first match wins; repeated materialization attempts
// produce distinct timestamped names but share the prefix. The scan
// is a plain prefix match because job IDs are provider-assigned and
// may contain glob metacharacters.
func (s *LocalStorage) FindArtifact(_ context.Context, jobID string) (string, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", false, fmt.Errorf("scan artifacts for %s: %w", jobID, err)
	}
	prefix := jobID + "_"
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(s.dir, entry.Name()), true, nil
		}
	}
	return "", false, nil
}

// UploadToS3 is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) UploadToS3(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}
