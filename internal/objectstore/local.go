package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a directory that the API serves statically.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the root directory of the store.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(ctx context.Context, objectPath string, body io.Reader, size int64) *Upload {
	return start(ctx, body, size, func(ctx context.Context, r io.Reader) (string, error) {
		rel := filepath.Clean(filepath.FromSlash(objectPath))
		if rel == "." || filepath.IsAbs(rel) || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
			return "", fmt.Errorf("invalid object path %q", objectPath)
		}
		dest := filepath.Join(s.dir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", err
		}

		tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
		if err != nil {
			return "", err
		}
		defer os.Remove(tmp.Name())

		if _, err := io.Copy(tmp, r); err != nil {
			tmp.Close()
			return "", err
		}
		if err := tmp.Close(); err != nil {
			return "", err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := os.Rename(tmp.Name(), dest); err != nil {
			return "", err
		}
		return s.baseURL + "/" + filepath.ToSlash(rel), nil
	})
}
