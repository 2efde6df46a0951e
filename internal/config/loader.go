package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (ASSETS_MANIFEST_MANIFEST_MERGE=true)
const EnvPrefix = "ASSETS_MANIFEST"

// Load loads configuration from file, environment, and defaults
// Uses the global viper instance to access CLI flag bindings
func Load() (*Config, error) {
	return load(viper.GetViper())
}

// LoadWithViper loads configuration and returns the viper instance
// This is useful for merging CLI flags later
func LoadWithViper() (*Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func load(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Config file settings; an explicit file set via SetConfigFile wins
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Environment variables (ASSETS_MANIFEST_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Manifest defaults
	v.SetDefault("manifest.path", "")
	v.SetDefault("manifest.filename", DefaultFileName)
	v.SetDefault("manifest.extensions", DefaultExtensions)
	v.SetDefault("manifest.pretty_print", DefaultPrettyPrint)
	v.SetDefault("manifest.merge", DefaultMerge)

	// Output defaults
	v.SetDefault("output.gzip", false)
	v.SetDefault("output.dry_run", false)

	// Cache defaults
	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.directory", CacheDir())

	// Publish defaults
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.region", DefaultPublishRegion)
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.access_key", "")
	v.SetDefault("publish.secret_key", "")
	v.SetDefault("publish.use_ssl", true)

	// Watch defaults
	v.SetDefault("watch.debounce", DefaultDebounce)

	// Concurrency defaults
	v.SetDefault("concurrency.workers", DefaultWorkers)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
