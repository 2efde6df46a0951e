// Package plugin runs the manifest pipeline for one finished compilation:
// dependency sort, projection into the chain, write and optional publish.
package plugin

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/quantmind-br/assets-manifest-go/internal/cache"
	"github.com/quantmind-br/assets-manifest-go/internal/config"
	"github.com/quantmind-br/assets-manifest-go/internal/domain"
	"github.com/quantmind-br/assets-manifest-go/internal/manifest"
	"github.com/quantmind-br/assets-manifest-go/internal/output"
	"github.com/quantmind-br/assets-manifest-go/internal/toposort"
	"github.com/quantmind-br/assets-manifest-go/internal/utils"
)

// Options configure the plugin. The zero value of Extensions (nil) selects
// the default extensions; an empty non-nil slice selects none.
type Options struct {
	// Path is the destination directory; empty means the compilation output path
	Path        string
	FileName    string
	Extensions  []string
	PrettyPrint bool
	Merge       bool
	// PublicPath overrides the compilation public path when not nil
	PublicPath *string
	Gzip       bool
	DryRun     bool
	// Metadata is kept for callers and never written
	Metadata map[string]any
}

// DefaultOptions returns the plugin defaults
func DefaultOptions() Options {
	return Options{
		FileName:    output.DefaultFileName,
		Extensions:  append([]string(nil), manifest.DefaultExtensions...),
		PrettyPrint: true,
	}
}

// OptionsFromConfig maps the loaded configuration onto plugin options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Path:        cfg.Manifest.Path,
		FileName:    cfg.Manifest.Filename,
		Extensions:  cfg.Manifest.Extensions,
		PrettyPrint: cfg.Manifest.PrettyPrint,
		Merge:       cfg.Manifest.Merge,
		PublicPath:  cfg.Manifest.PublicPath,
		Gzip:        cfg.Output.Gzip,
		DryRun:      cfg.Output.DryRun,
		Metadata:    cfg.Manifest.Metadata,
	}
}

// Dependencies are the collaborators of the plugin. All are optional.
type Dependencies struct {
	FileSystem domain.FileSystem
	Tracker    *cache.Tracker
	Publisher  domain.Publisher
	Logger     *utils.Logger
}

// Plugin writes the assets manifest after each compilation
type Plugin struct {
	opts      Options
	fs        domain.FileSystem
	tracker   *cache.Tracker
	publisher domain.Publisher
	logger    *utils.Logger
}

// Report summarizes one AfterEmit run
type Report struct {
	Hash      string
	Order     []string
	Result    *output.Result
	Published []string
	Duration  time.Duration
}

// New creates a plugin
func New(opts Options, deps Dependencies) *Plugin {
	if opts.Extensions == nil {
		opts.Extensions = append([]string(nil), manifest.DefaultExtensions...)
	}
	if opts.FileName == "" {
		opts.FileName = output.DefaultFileName
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}

	return &Plugin{
		opts:      opts,
		fs:        deps.FileSystem,
		tracker:   deps.Tracker,
		publisher: deps.Publisher,
		logger:    deps.Logger.WithComponent("plugin"),
	}
}

// Options returns a copy of the plugin options
func (p *Plugin) Options() Options {
	return p.opts
}

// Destination returns the manifest path for a compilation
func (p *Plugin) Destination(comp *domain.Compilation) string {
	return filepath.Join(p.directory(comp), p.opts.FileName)
}

func (p *Plugin) directory(comp *domain.Compilation) string {
	if p.opts.Path != "" {
		return p.opts.Path
	}
	return comp.OutputPath
}

func (p *Plugin) basePath(comp *domain.Compilation) string {
	if p.opts.PublicPath != nil {
		return *p.opts.PublicPath
	}
	return comp.PublicPath
}

// AfterEmit sorts the chunks of comp by dependency, writes the manifest and
// publishes it when a publisher is configured
func (p *Plugin) AfterEmit(ctx context.Context, comp *domain.Compilation) (*Report, error) {
	if comp == nil {
		return nil, fmt.Errorf("compilation is nil")
	}
	start := time.Now()
	logger := p.logger.With().Str("hash", comp.Hash).Logger()

	sorted, err := toposort.Sort(comp.Chunks)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("chunks", len(sorted)).
		Int("edges", len(toposort.Edges(comp.Chunks))).
		Strs("order", domain.ChunkIDs(sorted)).
		Msg("Chunks sorted")

	head := manifest.Project(sorted, manifest.Options{
		Extensions: p.opts.Extensions,
		BasePath:   p.basePath(comp),
	})

	writer := output.NewManifestWriter(output.WriterOptions{
		Directory:   p.directory(comp),
		FileName:    p.opts.FileName,
		PrettyPrint: p.opts.PrettyPrint,
		Merge:       p.opts.Merge,
		Gzip:        p.opts.Gzip,
		DryRun:      p.opts.DryRun,
		FileSystem:  p.fs,
		Tracker:     p.tracker,
		Logger:      &utils.Logger{Logger: logger},
	})
	result, err := writer.Write(ctx, head)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Hash:   comp.Hash,
		Order:  domain.ChunkIDs(sorted),
		Result: result,
	}

	if p.publisher != nil && result.Written {
		locations, err := p.publish(ctx, result)
		if err != nil {
			return nil, err
		}
		report.Published = locations
	}

	report.Duration = time.Since(start)
	logger.Info().
		Str("path", result.Path).
		Int("chunks", len(sorted)).
		Bool("written", result.Written).
		Bool("unchanged", result.Unchanged).
		Bool("dry_run", result.DryRun).
		Dur("duration", report.Duration).
		Msg("Assets manifest emitted")

	return report, nil
}

func (p *Plugin) publish(ctx context.Context, result *output.Result) ([]string, error) {
	location, err := p.publisher.Publish(ctx, p.opts.FileName, result.Content)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", p.opts.FileName, err)
	}
	locations := []string{location}

	if result.GzipPath != "" {
		name := p.opts.FileName + output.GzipSuffix
		location, err := p.publisher.Publish(ctx, name, result.GzipContent)
		if err != nil {
			return nil, fmt.Errorf("publish %s: %w", name, err)
		}
		locations = append(locations, location)
	}

	p.logger.Debug().Strs("locations", locations).Msg("Manifest published")
	return locations, nil
}
