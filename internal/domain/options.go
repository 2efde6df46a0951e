package domain

// CommonOptions contains shared options for the plugin, watcher and batch runner.
type CommonOptions struct {
	Verbose bool
	DryRun  bool
}

// DefaultCommonOptions returns CommonOptions with default values.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{}
}
