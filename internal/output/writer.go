package output

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/quantmind-br/assets-manifest-go/internal/cache"
	"github.com/quantmind-br/assets-manifest-go/internal/domain"
	"github.com/quantmind-br/assets-manifest-go/internal/manifest"
	"github.com/quantmind-br/assets-manifest-go/internal/utils"
)

const (
	// DefaultFileName is used when no file name is configured
	DefaultFileName = "assets-manifest.json"
	// GzipSuffix is appended to the manifest path for the compressed copy
	GzipSuffix = ".gz"

	dirPerm  fs.FileMode = 0755
	filePerm fs.FileMode = 0644
	indent               = "  "
)

// ManifestWriter writes a manifest chain to disk
type ManifestWriter struct {
	directory   string
	fileName    string
	prettyPrint bool
	merge       bool
	gzip        bool
	dryRun      bool
	fs          domain.FileSystem
	tracker     *cache.Tracker
	logger      *utils.Logger
}

// WriterOptions contains options for the manifest writer
type WriterOptions struct {
	Directory   string
	FileName    string
	PrettyPrint bool
	Merge       bool
	Gzip        bool
	DryRun      bool
	// FileSystem defaults to the local disk
	FileSystem domain.FileSystem
	// Tracker enables skipping rewrites of identical content
	Tracker *cache.Tracker
	Logger  *utils.Logger
}

// Result describes one Write call
type Result struct {
	Path        string
	GzipPath    string
	Content     []byte
	GzipContent []byte
	Merged      bool
	Written     bool
	// Unchanged is set when the write was skipped because the file already
	// holds the same content.
	Unchanged bool
	DryRun    bool
}

// NewManifestWriter creates a new manifest writer
func NewManifestWriter(opts WriterOptions) *ManifestWriter {
	if opts.FileName == "" {
		opts.FileName = DefaultFileName
	}
	if opts.FileSystem == nil {
		opts.FileSystem = OSFileSystem{}
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	return &ManifestWriter{
		directory:   opts.Directory,
		fileName:    opts.FileName,
		prettyPrint: opts.PrettyPrint,
		merge:       opts.Merge,
		gzip:        opts.Gzip,
		dryRun:      opts.DryRun,
		fs:          opts.FileSystem,
		tracker:     opts.Tracker,
		logger:      opts.Logger.WithComponent("writer"),
	}
}

// Path returns the manifest file path
func (w *ManifestWriter) Path() string {
	return filepath.Join(w.directory, w.fileName)
}

// Write serializes head and writes it to the manifest path. A nil head is
// written as JSON null, or leaves the existing fields untouched when merging.
func (w *ManifestWriter) Write(ctx context.Context, head *manifest.Node) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := w.Path()
	result := &Result{Path: path, DryRun: w.dryRun}

	if !w.dryRun {
		if err := w.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
			return nil, domain.NewFileSystemError("mkdir", filepath.Dir(path), err)
		}
	}

	content, merged, err := w.render(path, head)
	if err != nil {
		return nil, err
	}
	result.Content = content
	result.Merged = merged

	if w.dryRun {
		w.logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("Dry run, manifest not written")
		return result, nil
	}

	if w.unchanged(ctx, path, content) {
		result.Unchanged = true
		w.logger.Debug().Str("path", path).Msg("Manifest unchanged, skipping write")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.fs.WriteFile(path, content, filePerm); err != nil {
		w.forget(ctx, path)
		return nil, domain.NewFileSystemError("write", path, err)
	}
	result.Written = true

	if w.gzip {
		gzPath := path + GzipSuffix
		compressed, err := compress(w.fileName, content)
		if err != nil {
			w.forget(ctx, path)
			return nil, err
		}
		if err := w.fs.WriteFile(gzPath, compressed, filePerm); err != nil {
			w.forget(ctx, path)
			return nil, domain.NewFileSystemError("write", gzPath, err)
		}
		result.GzipPath = gzPath
		result.GzipContent = compressed
	}

	if err := w.tracker.Record(ctx, path, content); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("Failed to record manifest digest")
	}

	w.logger.Debug().
		Str("path", path).
		Int("bytes", len(content)).
		Bool("merged", merged).
		Msg("Manifest written")

	return result, nil
}

// render produces the bytes to write and reports whether an existing file
// was merged into them
func (w *ManifestWriter) render(path string, head *manifest.Node) ([]byte, bool, error) {
	format := ""
	if w.prettyPrint {
		format = indent
	}

	if w.merge {
		existing, err := w.fs.ReadFile(path)
		if err == nil {
			content, err := mergeManifest(existing, head, format)
			if err != nil {
				return nil, false, domain.NewParseError(path, err)
			}
			return content, true, nil
		}
		w.logger.Debug().Err(err).Str("path", path).Msg("No existing manifest to merge")
	}

	content, err := head.Encode("", format)
	if err != nil {
		return nil, false, err
	}
	return content, false, nil
}

// unchanged reports whether the write cache recorded content as the last
// write to path and the files on disk still hold it
func (w *ManifestWriter) unchanged(ctx context.Context, path string, content []byte) bool {
	if w.tracker == nil || !w.tracker.Unchanged(ctx, path, content) {
		return false
	}
	onDisk, err := w.fs.ReadFile(path)
	if err != nil || !bytes.Equal(onDisk, content) {
		return false
	}
	if w.gzip {
		compressed, err := compress(w.fileName, content)
		if err != nil {
			return false
		}
		onDisk, err := w.fs.ReadFile(path + GzipSuffix)
		if err != nil || !bytes.Equal(onDisk, compressed) {
			return false
		}
	}
	return true
}

// forget drops the recorded digest of path after a failed write, so a file
// left half written is never mistaken for the cached content
func (w *ManifestWriter) forget(ctx context.Context, path string) {
	if err := w.tracker.Forget(ctx, path); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("Failed to drop manifest digest")
	}
}

// mergeManifest overlays the top-level fields of head on the existing
// manifest document
func mergeManifest(existing []byte, head *manifest.Node, format string) ([]byte, error) {
	var base []field
	trimmed := bytes.TrimSpace(existing)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		var err error
		base, err = splitObject(trimmed)
		if err != nil {
			return nil, err
		}
	}

	var fresh []field
	if head != nil {
		compact, err := head.Encode("", "")
		if err != nil {
			return nil, err
		}
		fresh, err = splitObject(compact)
		if err != nil {
			return nil, err
		}
	}

	return encodeObject(mergeFields(base, fresh), format)
}

func compress(name string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	zw.Name = name
	if _, err := zw.Write(content); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
