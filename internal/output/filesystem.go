package output

import (
	"io/fs"
	"os"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// Ensure OSFileSystem implements domain.FileSystem
var _ domain.FileSystem = OSFileSystem{}

// OSFileSystem is the domain.FileSystem backed by the local disk
type OSFileSystem struct{}

// MkdirAll creates a directory and its parents if absent
func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ReadFile returns the content of a file
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data, replacing any existing file
func (OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}
