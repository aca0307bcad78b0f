package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FS - filesystem backend writing into a single flat directory
// Keys are reduced to their base name so a crafted key can never escape root
type FS struct {
	root    string
	baseURL string
}

// NewFS - creates the root directory if needed
func NewFS(root, baseURL string) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FS{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (f *FS) path(key string) string {
	return filepath.Join(f.root, filepath.Base(key))
}

// Save - stores data under key
func (f *FS) Save(_ context.Context, key string, data []byte, _ string) error {
	return os.WriteFile(f.path(key), data, 0o644)
}

// Read - returns the object stored under key or ErrNotFound
func (f *FS) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// URL - objects are served by this service itself under /files/
func (f *FS) URL(key string) string {
	return f.baseURL + "/files/" + filepath.Base(key)
}
