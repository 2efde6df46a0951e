package domain

import (
	"context"
	"io/fs"
	"time"
)

//go:generate mockgen -destination=../mocks/domain_mock.go -package=mocks . FileSystem,Publisher

// FileSystem is the set of filesystem primitives the manifest writer consumes
type FileSystem interface {
	// MkdirAll creates a directory and its parents if absent
	MkdirAll(path string, perm fs.FileMode) error
	// ReadFile returns the content of a file
	ReadFile(path string) ([]byte, error)
	// WriteFile writes data, replacing any existing file
	WriteFile(path string, data []byte, perm fs.FileMode) error
}

// Cache defines the interface for the write cache
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}

// Publisher uploads a written manifest to a remote store
type Publisher interface {
	// Publish stores content under the given object name
	Publish(ctx context.Context, name string, content []byte) (string, error)
}
