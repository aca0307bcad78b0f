// Package storage abstracts where uploaded assets live: a local directory in
// development, an S3-compatible bucket in production.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound - returned by Read when no object exists under the key
var ErrNotFound = errors.New("storage: object not found")

// Backend - a place uploaded assets are written to and served from
type Backend interface {
	// Save - stores data under key, overwriting any previous object
	Save(ctx context.Context, key string, data []byte, contentType string) error
	// Read - returns the object stored under key or ErrNotFound
	Read(ctx context.Context, key string) ([]byte, error)
	// URL - public URL the object is reachable at
	URL(key string) string
}
