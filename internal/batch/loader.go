package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/assets-manifest-go/internal/utils"
)

// Loader loads and validates build list files
type Loader struct{}

// NewLoader creates a new build list loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a build list. Relative stats and path entries are
// resolved against the directory of the file.
func (l *Loader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build list: %w", err)
	}

	cfg, err := l.LoadFromBytes(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	for i := range cfg.Builds {
		cfg.Builds[i].Stats = resolve(baseDir, cfg.Builds[i].Stats)
		cfg.Builds[i].Path = resolve(baseDir, cfg.Builds[i].Path)
	}
	return cfg, nil
}

// LoadFromBytes parses a build list from raw bytes
func (l *Loader) LoadFromBytes(data []byte, ext string) (*Config, error) {
	ext = strings.ToLower(ext)

	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}

	l.applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) applyDefaults(cfg *Config) {
	defaults := DefaultOptions()

	if cfg.Options.Concurrency <= 0 {
		cfg.Options.Concurrency = defaults.Concurrency
	}
}

func resolve(baseDir, path string) string {
	path = utils.ExpandPath(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
