package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
	"github.com/quantmind-br/assets-manifest-go/internal/plugin"
	"github.com/quantmind-br/assets-manifest-go/internal/stats"
	"github.com/quantmind-br/assets-manifest-go/internal/utils"
)

// Runner emits the manifests of a build list
type Runner struct {
	base   plugin.Options
	deps   plugin.Dependencies
	loader *stats.Loader
	logger *utils.Logger
}

// BuildResult is the outcome of one build
type BuildResult struct {
	Name   string
	Report *plugin.Report
	Err    error
}

// Summary collects the outcome of every build, in list order
type Summary struct {
	Results  []BuildResult
	Duration time.Duration
}

// Failed returns the results that carry an error
func (s *Summary) Failed() []BuildResult {
	var failed []BuildResult
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// NewRunner creates a runner. base holds the options every build inherits.
func NewRunner(base plugin.Options, deps plugin.Dependencies) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Runner{
		base:   base,
		deps:   deps,
		loader: stats.NewLoader(),
		logger: logger.WithComponent("batch"),
	}
}

type job struct {
	index  int
	name   string
	plugin *plugin.Plugin
	comp   *domain.Compilation
}

// Run loads every stats file, rejects builds that share a destination, then
// emits the manifests on a pool of cfg.Options.Concurrency workers. Unless
// ContinueOnError is set, the first failure cancels the builds not yet
// started. The returned error joins every build failure.
func (r *Runner) Run(ctx context.Context, cfg *Config) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	summary := &Summary{Results: make([]BuildResult, len(cfg.Builds))}
	jobs, err := r.prepare(cfg, summary)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := utils.ParallelForEach(ctx, jobs, cfg.Options.Concurrency, func(ctx context.Context, j job) error {
		logger := r.logger.WithBuild(j.name)
		report, err := j.plugin.AfterEmit(ctx, j.comp)
		if err != nil {
			logger.Error().Err(err).Msg("Build failed")
			if !cfg.Options.ContinueOnError {
				cancel()
			}
			return err
		}
		summary.Results[j.index].Report = report
		logger.Debug().Str("path", report.Result.Path).Msg("Build done")
		return nil
	})
	for _, task := range tasks {
		if task.Err != nil {
			summary.Results[task.Data.index].Err = domain.NewBuildError(task.Data.name, task.Err)
		}
	}

	summary.Duration = time.Since(start)
	failed := summary.Failed()
	r.logger.Info().
		Int("builds", len(cfg.Builds)).
		Int("failed", len(failed)).
		Dur("duration", summary.Duration).
		Msg("Batch finished")

	errs := make([]error, len(summary.Results))
	for i, r := range summary.Results {
		errs[i] = r.Err
	}
	return summary, errors.Join(utils.CollectErrors(errs)...)
}

// prepare loads the stats of every build and resolves its destination.
// Load failures are recorded in summary when ContinueOnError is set.
func (r *Runner) prepare(cfg *Config, summary *Summary) ([]job, error) {
	jobs := make([]job, 0, len(cfg.Builds))
	owners := make(map[string]string, len(cfg.Builds))

	for i, b := range cfg.Builds {
		name := b.DisplayName()
		summary.Results[i].Name = name

		comp, err := r.loader.Load(b.Stats)
		if err != nil {
			buildErr := domain.NewBuildError(name, err)
			if !cfg.Options.ContinueOnError {
				return nil, buildErr
			}
			summary.Results[i].Err = buildErr
			r.logger.WithBuild(name).Error().Err(err).Msg("Failed to load stats")
			continue
		}

		p := plugin.New(b.Apply(r.base), r.deps)
		dest := p.Destination(comp)
		key := utils.AbsPath(dest)
		if owner, taken := owners[key]; taken {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateDestination, owner, name, dest)
		}
		owners[key] = name

		jobs = append(jobs, job{index: i, name: name, plugin: p, comp: comp})
	}
	return jobs, nil
}
