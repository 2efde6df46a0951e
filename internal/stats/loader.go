package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// Loader reads bundler stats files
type Loader struct{}

// NewLoader creates a new stats loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a stats file from the given path
func (l *Loader) Load(path string) (*domain.Compilation, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}

	return l.LoadFromBytes(data, filepath.Ext(path))
}

// LoadFromBytes parses stats from raw bytes
func (l *Loader) LoadFromBytes(data []byte, ext string) (*domain.Compilation, error) {
	ext = strings.ToLower(ext)

	var doc Document
	switch ext {
	case ".yaml", ".yml":
		// YAML goes through its generic form so the JSON decoders of the chunk
		// id types apply to both formats.
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if err := json.Unmarshal(converted, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}

	return doc.Compilation()
}
