package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Manifest    ManifestConfig    `mapstructure:"manifest" yaml:"manifest"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Publish     PublishConfig     `mapstructure:"publish" yaml:"publish"`
	Watch       WatchConfig       `mapstructure:"watch" yaml:"watch"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// ManifestConfig contains the manifest options
type ManifestConfig struct {
	// Path is the destination directory. Empty means the compilation output path.
	Path        string   `mapstructure:"path" yaml:"path"`
	Filename    string   `mapstructure:"filename" yaml:"filename"`
	Extensions  []string `mapstructure:"extensions" yaml:"extensions"`
	PrettyPrint bool     `mapstructure:"pretty_print" yaml:"pretty_print"`
	Merge       bool     `mapstructure:"merge" yaml:"merge"`
	// PublicPath overrides the compilation public path when set.
	PublicPath *string `mapstructure:"public_path" yaml:"public_path,omitempty"`
	// Metadata is carried along untouched for callers; it is not written.
	Metadata map[string]any `mapstructure:"metadata" yaml:"metadata,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Gzip   bool `mapstructure:"gzip" yaml:"gzip"`
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// CacheConfig contains write cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// PublishConfig contains S3-compatible upload settings
type PublishConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" yaml:"region"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// Enabled reports whether a publish target is configured
func (p PublishConfig) Enabled() bool {
	return strings.TrimSpace(p.Bucket) != ""
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// ConcurrencyConfig contains batch concurrency settings
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Manifest.Filename) == "" {
		c.Manifest.Filename = DefaultFileName
	}
	if strings.HasSuffix(c.Manifest.Filename, "/") {
		return fmt.Errorf("invalid manifest.filename %q: must name a file", c.Manifest.Filename)
	}
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Watch.Debounce < MinDebounce {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Publish.Enabled() {
		if strings.TrimSpace(c.Publish.Endpoint) == "" {
			return fmt.Errorf("publish.endpoint is required when publish.bucket is set")
		}
		if c.Publish.Region == "" {
			c.Publish.Region = DefaultPublishRegion
		}
	}
	return nil
}
