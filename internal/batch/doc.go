// Package batch loads build lists and emits one assets manifest per build.
// A build list names several stats files, each with its own destination
// and manifest options, which lets one invocation serve a multi-bundle repo.
//
// # Build List Format
//
// Build lists can be written in YAML or JSON format:
//
//	builds:
//	  - name: client
//	    stats: dist/client/stats.json
//	    public_path: /static/
//	  - name: admin
//	    stats: dist/admin/stats.json
//	    path: dist/manifests
//	    filename: admin.json
//	    extensions: [js]
//	    merge: true
//	options:
//	  concurrency: 2
//	  continue_on_error: true
//
// Relative stats and path entries are resolved against the directory of
// the build list.
//
// # Usage
//
//	cfg, err := batch.NewLoader().Load("builds.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := batch.NewRunner(plugin.DefaultOptions(), plugin.Dependencies{}).Run(ctx, cfg)
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoBuilds: the list has no builds
//   - ErrEmptyStats: a build is missing its stats file
//   - ErrDuplicateDestination: two builds would write the same manifest
//   - ErrInvalidFormat: file is not valid YAML/JSON
//   - ErrFileNotFound: build list does not exist
//   - ErrUnsupportedExt: unsupported file extension
package batch
