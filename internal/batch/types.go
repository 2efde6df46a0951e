package batch

import (
	"fmt"

	"github.com/quantmind-br/assets-manifest-go/internal/plugin"
)

// Config represents a complete build list
type Config struct {
	Builds  []Build `yaml:"builds" json:"builds"`
	Options Options `yaml:"options" json:"options"`
}

// Build is one stats file and the manifest options that apply to it. Unset
// fields inherit the global options.
type Build struct {
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Stats       string   `yaml:"stats" json:"stats"`
	Path        string   `yaml:"path,omitempty" json:"path,omitempty"`
	Filename    string   `yaml:"filename,omitempty" json:"filename,omitempty"`
	Extensions  []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	PublicPath  *string  `yaml:"public_path,omitempty" json:"public_path,omitempty"`
	Merge       *bool    `yaml:"merge,omitempty" json:"merge,omitempty"`
	PrettyPrint *bool    `yaml:"pretty_print,omitempty" json:"pretty_print,omitempty"`
	Gzip        *bool    `yaml:"gzip,omitempty" json:"gzip,omitempty"`
}

// Options represents global build list options
type Options struct {
	ContinueOnError bool `yaml:"continue_on_error" json:"continue_on_error"`
	Concurrency     int  `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
}

// DisplayName returns the build name, or its stats path when unnamed
func (b Build) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Stats
}

// Apply overlays the build's settings on base
func (b Build) Apply(base plugin.Options) plugin.Options {
	opts := base
	if b.Path != "" {
		opts.Path = b.Path
	}
	if b.Filename != "" {
		opts.FileName = b.Filename
	}
	if b.Extensions != nil {
		opts.Extensions = append([]string{}, b.Extensions...)
	}
	if b.PublicPath != nil {
		opts.PublicPath = b.PublicPath
	}
	if b.Merge != nil {
		opts.Merge = *b.Merge
	}
	if b.PrettyPrint != nil {
		opts.PrettyPrint = *b.PrettyPrint
	}
	if b.Gzip != nil {
		opts.Gzip = *b.Gzip
	}
	return opts
}

// Validate validates the build list
func (c *Config) Validate() error {
	if len(c.Builds) == 0 {
		return ErrNoBuilds
	}
	for i, b := range c.Builds {
		if b.Stats == "" {
			return fmt.Errorf("build %d: %w", i, ErrEmptyStats)
		}
	}
	return nil
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		ContinueOnError: false,
		Concurrency:     4,
	}
}
