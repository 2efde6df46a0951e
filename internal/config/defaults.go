package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Manifest defaults
	DefaultFileName    = "assets-manifest.json"
	DefaultPrettyPrint = true
	DefaultMerge       = false

	// Concurrency defaults
	DefaultWorkers = 4

	// Watch defaults
	DefaultDebounce = 300 * time.Millisecond
	MinDebounce     = 10 * time.Millisecond

	// Cache defaults
	DefaultCacheEnabled = false
	DefaultCacheTTL     = 7 * 24 * time.Hour

	// Publish defaults
	DefaultPublishRegion = "us-east-1"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultExtensions are the extension groups written when none are configured
var DefaultExtensions = []string{"js", "css"}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".assets-manifest"
	}
	return filepath.Join(home, ".assets-manifest")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Manifest: ManifestConfig{
			Filename:    DefaultFileName,
			Extensions:  append([]string(nil), DefaultExtensions...),
			PrettyPrint: DefaultPrettyPrint,
			Merge:       DefaultMerge,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
