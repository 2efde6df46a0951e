package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/assets-manifest-go/internal/batch"
	"github.com/quantmind-br/assets-manifest-go/internal/cache"
	"github.com/quantmind-br/assets-manifest-go/internal/config"
	"github.com/quantmind-br/assets-manifest-go/internal/domain"
	"github.com/quantmind-br/assets-manifest-go/internal/plugin"
	"github.com/quantmind-br/assets-manifest-go/internal/publish"
	"github.com/quantmind-br/assets-manifest-go/internal/stats"
	"github.com/quantmind-br/assets-manifest-go/internal/utils"
	"github.com/quantmind-br/assets-manifest-go/internal/watch"
	"github.com/quantmind-br/assets-manifest-go/pkg/version"
)

var (
	cfgFile string
	verbose bool
	log     = utils.NewDefaultLogger()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "assets-manifest [stats-file]",
	Short: "Write the assets manifest of a bundler build",
	Long: `assets-manifest reads the stats file a bundler emits after a build and
writes a manifest chaining every chunk in dependency order, each with its
files grouped by extension.

The manifest can be merged into an existing file, compressed next to the
original and uploaded to an S3-compatible bucket.`,
	Version:       version.Short(),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var watchCmd = &cobra.Command{
	Use:   "watch <stats-file>",
	Short: "Rewrite the manifest whenever the stats file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var batchCmd = &cobra.Command{
	Use:   "batch <build-list>",
	Short: "Write the manifests of several builds listed in a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is %s)", config.ConfigFilePath()))
	rootCmd.PersistentFlags().StringP("output", "o", "", "Manifest directory (default is the build output path)")
	rootCmd.PersistentFlags().StringP("filename", "f", config.DefaultFileName, "Manifest file name")
	rootCmd.PersistentFlags().StringSliceP("extensions", "e", nil, "File extensions to group (default js,css)")
	rootCmd.PersistentFlags().String("public-path", "", "Prefix for every file (default is the build public path)")
	rootCmd.PersistentFlags().Bool("pretty", config.DefaultPrettyPrint, "Indent the manifest")
	rootCmd.PersistentFlags().Bool("merge", config.DefaultMerge, "Merge into an existing manifest")
	rootCmd.PersistentFlags().Bool("gzip", false, "Also write a gzip-compressed copy")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Print the manifest without writing files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Cache flags
	rootCmd.PersistentFlags().Bool("cache", config.DefaultCacheEnabled, "Skip writes whose content did not change")
	rootCmd.PersistentFlags().Duration("cache-ttl", config.DefaultCacheTTL, "Cache TTL")

	watchCmd.Flags().Duration("debounce", config.DefaultDebounce, "Quiet period before rewriting")
	batchCmd.Flags().IntP("concurrency", "j", config.DefaultWorkers, "Number of builds processed at once")
	batchCmd.Flags().Bool("continue-on-error", false, "Keep going when a build fails")

	// Bind flags to viper
	_ = viper.BindPFlag("manifest.path", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("manifest.filename", rootCmd.PersistentFlags().Lookup("filename"))
	_ = viper.BindPFlag("manifest.pretty_print", rootCmd.PersistentFlags().Lookup("pretty"))
	_ = viper.BindPFlag("manifest.merge", rootCmd.PersistentFlags().Lookup("merge"))
	_ = viper.BindPFlag("output.gzip", rootCmd.PersistentFlags().Lookup("gzip"))
	_ = viper.BindPFlag("output.dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = viper.BindPFlag("cache.enabled", rootCmd.PersistentFlags().Lookup("cache"))
	_ = viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))
	_ = viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))

	// Add subcommands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// a missing .env is the common case
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup loads the configuration, applies the flags that viper cannot express
// and initializes the logger
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// an explicit empty list and an unset public path are both meaningful
	if cmd.Flags().Changed("extensions") {
		cfg.Manifest.Extensions, _ = cmd.Flags().GetStringSlice("extensions")
	}
	if cmd.Flags().Changed("public-path") {
		publicPath, _ := cmd.Flags().GetString("public-path")
		cfg.Manifest.PublicPath = &publicPath
	}

	log = newLogger(cfg.Logging, verbose, cmd.ErrOrStderr())
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig, verbose bool, out io.Writer) *utils.Logger {
	level := cfg.Level
	if verbose {
		level = "debug"
	}
	return utils.NewLogger(utils.LoggerOptions{
		Level:   level,
		Format:  cfg.Format,
		Output:  out,
		Verbose: verbose,
	})
}

// newDependencies opens the write cache and the publisher the configuration
// asks for. The returned cleanup releases them.
func newDependencies(cfg *config.Config, logger *utils.Logger) (plugin.Dependencies, func(), error) {
	deps := plugin.Dependencies{Logger: logger}
	cleanup := func() {}

	if cfg.Cache.Enabled {
		c, err := cache.NewBadgerCache(cache.Options{Directory: cfg.Cache.Directory})
		if err != nil {
			return deps, cleanup, fmt.Errorf("failed to open cache: %w", err)
		}
		deps.Tracker = cache.NewTracker(c, cfg.Cache.TTL)
		cleanup = func() {
			if err := c.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close cache")
			}
		}
	}

	if cfg.Publish.Enabled() {
		p, err := publish.NewS3Publisher(publish.Config{
			Endpoint:  cfg.Publish.Endpoint,
			Region:    cfg.Publish.Region,
			AccessKey: cfg.Publish.AccessKey,
			SecretKey: cfg.Publish.SecretKey,
			Bucket:    cfg.Publish.Bucket,
			Prefix:    cfg.Publish.Prefix,
			UseSSL:    cfg.Publish.UseSSL,
		})
		if err != nil {
			cleanup()
			return deps, func() {}, fmt.Errorf("failed to create publisher: %w", err)
		}
		deps.Publisher = p
	}

	return deps, cleanup, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Info().Msg("Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	deps, cleanup, err := newDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext()
	defer cancel()

	return emit(ctx, plugin.New(plugin.OptionsFromConfig(cfg), deps), args[0], cmd.OutOrStdout())
}

// emit runs one manifest cycle for statsPath. In dry-run mode the rendered
// manifest is printed to out.
func emit(ctx context.Context, p *plugin.Plugin, statsPath string, out io.Writer) error {
	comp, err := stats.NewLoader().Load(statsPath)
	if err != nil {
		return err
	}

	report, err := p.AfterEmit(ctx, comp)
	if err != nil {
		return err
	}

	if report.Result.DryRun {
		if _, err := fmt.Fprintln(out, string(report.Result.Content)); err != nil {
			return err
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	deps, cleanup, err := newDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	p := plugin.New(plugin.OptionsFromConfig(cfg), deps)
	out := cmd.OutOrStdout()

	w, err := watch.New(watch.Config{
		Path:       args[0],
		Debounce:   cfg.Watch.Debounce,
		RunOnStart: true,
		OnChange: func(ctx context.Context, path string) error {
			return emit(ctx, p, path, out)
		},
		Logger: log,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return w.Run(ctx)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	list, err := batch.NewLoader().Load(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		list.Options.Concurrency = cfg.Concurrency.Workers
	}
	if cmd.Flags().Changed("continue-on-error") {
		list.Options.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	deps, cleanup, err := newDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext()
	defer cancel()

	summary, err := batch.NewRunner(plugin.OptionsFromConfig(cfg), deps).Run(ctx, list)
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary)
	}
	return err
}

func printSummary(out io.Writer, summary *batch.Summary) {
	for _, r := range summary.Results {
		switch {
		case r.Err != nil:
			var buildErr *domain.BuildError
			msg := r.Err.Error()
			if errors.As(r.Err, &buildErr) {
				msg = buildErr.Err.Error()
			}
			fmt.Fprintf(out, "FAIL  %s: %s\n", r.Name, msg)
		case r.Report == nil:
			fmt.Fprintf(out, "SKIP  %s\n", r.Name)
		case r.Report.Result.Unchanged:
			fmt.Fprintf(out, "SAME  %s  %s\n", r.Name, r.Report.Result.Path)
		default:
			fmt.Fprintf(out, "OK    %s  %s\n", r.Name, r.Report.Result.Path)
		}
	}
	fmt.Fprintf(out, "%d builds, %d failed in %s\n", len(summary.Results), len(summary.Failed()), summary.Duration)
}
