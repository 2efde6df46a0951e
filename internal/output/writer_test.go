package output

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quantmind-br/assets-manifest-go/internal/cache"
	"github.com/quantmind-br/assets-manifest-go/internal/domain"
	"github.com/quantmind-br/assets-manifest-go/internal/manifest"
	"github.com/quantmind-br/assets-manifest-go/internal/mocks"
	"github.com/quantmind-br/assets-manifest-go/internal/testutil"
)

func chunkChain() *manifest.Node {
	return manifest.Project([]domain.Chunk{
		{ID: domain.StringID("chunk"), Files: []string{"index.css", "index.js"}},
	}, manifest.Options{Extensions: []string{"js"}})
}

// TestNewManifestWriter tests writer defaults
func TestNewManifestWriter(t *testing.T) {
	w := NewManifestWriter(WriterOptions{Directory: "dist"})

	assert.Equal(t, filepath.Join("dist", DefaultFileName), w.Path())
	assert.IsType(t, OSFileSystem{}, w.fs)
	assert.NotNil(t, w.logger)
}

// TestManifestWriter_Write tests plain writes
func TestManifestWriter_Write(t *testing.T) {
	tests := []struct {
		name   string
		pretty bool
		head   *manifest.Node
		want   string
	}{
		{
			name: "compact",
			head: chunkChain(),
			want: `{"id":"chunk","js":["index.js"],"next":null}`,
		},
		{
			name:   "pretty",
			pretty: true,
			head:   chunkChain(),
			want:   "{\n  \"id\": \"chunk\",\n  \"js\": [\n    \"index.js\"\n  ],\n  \"next\": null\n}",
		},
		{
			name:   "nil chain",
			pretty: true,
			want:   "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "dist")
			w := NewManifestWriter(WriterOptions{
				Directory:   dir,
				PrettyPrint: tt.pretty,
				Logger:      testutil.NewTestLogger(t),
			})

			result, err := w.Write(context.Background(), tt.head)

			require.NoError(t, err)
			assert.True(t, result.Written)
			assert.False(t, result.Merged)
			assert.Equal(t, filepath.Join(dir, DefaultFileName), result.Path)
			assert.Equal(t, tt.want, testutil.ReadFile(t, result.Path))
			assert.Equal(t, tt.want, string(result.Content))
		})
	}
}

// TestManifestWriter_Overwrite tests that non-merge writes replace the file
func TestManifestWriter_Overwrite(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "m.json", `{"keep":"me"}`)

	w := NewManifestWriter(WriterOptions{Directory: dir, FileName: "m.json"})
	_, err := w.Write(context.Background(), chunkChain())

	require.NoError(t, err)
	assert.Equal(t, `{"id":"chunk","js":["index.js"],"next":null}`, testutil.ReadFile(t, path))
}

// TestManifestWriter_Merge tests merging into an existing manifest
func TestManifestWriter_Merge(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		head     *manifest.Node
		pretty   bool
		want     string
	}{
		{
			name:     "new values win and old keys are kept",
			existing: `{"id":"old","js":["old.js"],"next":null,"extra":{"a":[1,2]}}`,
			head:     chunkChain(),
			want:     `{"id":"chunk","js":["index.js"],"next":null,"extra":{"a":[1,2]}}`,
		},
		{
			name:     "new keys are appended",
			existing: `{"build":"42"}`,
			head:     chunkChain(),
			want:     `{"build":"42","id":"chunk","js":["index.js"],"next":null}`,
		},
		{
			name:     "nil chain keeps existing fields",
			existing: `{"id":"old","next":null}`,
			want:     `{"id":"old","next":null}`,
		},
		{
			name:     "existing null",
			existing: `null`,
			head:     chunkChain(),
			want:     `{"id":"chunk","js":["index.js"],"next":null}`,
		},
		{
			name:     "empty existing file",
			existing: "  \n",
			want:     `{}`,
		},
		{
			name:     "pretty output reindents old values",
			existing: `{"extra":{"a":[1,"<b>"],"e":{},"f":[]}}`,
			head:     chunkChain(),
			pretty:   true,
			want: `{
  "extra": {
    "a": [
      1,
      "<b>"
    ],
    "e": {},
    "f": []
  },
  "id": "chunk",
  "js": [
    "index.js"
  ],
  "next": null
}`,
		},
		{
			name:     "duplicate keys keep the last value",
			existing: `{"a":1,"b":2,"a":3}`,
			want:     `{"a":3,"b":2}`,
		},
		{
			name:     "numbers keep their literal form",
			existing: `{"big":12345678901234567890,"f":1.50}`,
			want:     `{"big":12345678901234567890,"f":1.50}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := testutil.WriteFile(t, dir, DefaultFileName, tt.existing)

			w := NewManifestWriter(WriterOptions{Directory: dir, Merge: true, PrettyPrint: tt.pretty})
			result, err := w.Write(context.Background(), tt.head)

			require.NoError(t, err)
			assert.True(t, result.Merged)
			assert.Equal(t, tt.want, testutil.ReadFile(t, path))
		})
	}
}

// TestManifestWriter_MergeWithoutExistingFile tests merge against a missing file
func TestManifestWriter_MergeWithoutExistingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewManifestWriter(WriterOptions{Directory: dir, Merge: true})

	result, err := w.Write(context.Background(), chunkChain())

	require.NoError(t, err)
	assert.False(t, result.Merged)
	assert.Equal(t, `{"id":"chunk","js":["index.js"],"next":null}`, testutil.ReadFile(t, result.Path))
}

// TestManifestWriter_MergeCorrupt tests that corrupt manifests are not overwritten
func TestManifestWriter_MergeCorrupt(t *testing.T) {
	tests := []struct {
		name     string
		existing string
	}{
		{"not json", `{"id":`},
		{"array", `["a"]`},
		{"string", `"manifest"`},
		{"trailing data", `{"a":1} {"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := testutil.WriteFile(t, dir, DefaultFileName, tt.existing)

			w := NewManifestWriter(WriterOptions{Directory: dir, Merge: true})
			result, err := w.Write(context.Background(), chunkChain())

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrCorruptManifest)
			var parseErr *domain.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, path, parseErr.Path)
			assert.Equal(t, tt.existing, testutil.ReadFile(t, path))
		})
	}
}

// TestManifestWriter_MergeLongChain tests merging chains deeper than encoding/json allows
func TestManifestWriter_MergeLongChain(t *testing.T) {
	chunks := make([]domain.Chunk, 11000)
	for i := range chunks {
		chunks[i] = domain.Chunk{ID: domain.NumericID(int64(i)), Files: []string{"f.js"}}
	}
	head := manifest.Project(chunks, manifest.DefaultOptions())

	dir := t.TempDir()
	w := NewManifestWriter(WriterOptions{Directory: dir, Merge: true})

	// first write has nothing to merge, the second merges the long chain
	_, err := w.Write(context.Background(), head)
	require.NoError(t, err)
	result, err := w.Write(context.Background(), head)
	require.NoError(t, err)
	assert.True(t, result.Merged)

	want, err := head.Encode("", "")
	require.NoError(t, err)
	assert.Equal(t, string(want), testutil.ReadFile(t, result.Path))
}

// TestManifestWriter_Gzip tests the compressed sidecar
func TestManifestWriter_Gzip(t *testing.T) {
	dir := t.TempDir()
	w := NewManifestWriter(WriterOptions{Directory: dir, Gzip: true})

	result, err := w.Write(context.Background(), chunkChain())
	require.NoError(t, err)
	require.Equal(t, result.Path+GzipSuffix, result.GzipPath)

	f, err := os.Open(result.GzipPath)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, zr.Name)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, result.Content, data)
}

// TestManifestWriter_DryRun tests that nothing touches the disk
func TestManifestWriter_DryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	w := NewManifestWriter(WriterOptions{Directory: dir, DryRun: true, Gzip: true})

	result, err := w.Write(context.Background(), chunkChain())

	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.False(t, result.Written)
	assert.Equal(t, `{"id":"chunk","js":["index.js"],"next":null}`, string(result.Content))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

// TestManifestWriter_WriteCache tests skipping identical rewrites
func TestManifestWriter_WriteCache(t *testing.T) {
	c, err := cache.NewBadgerCache(cache.Options{InMemory: true})
	require.NoError(t, err)
	defer c.Close()

	dir := t.TempDir()
	w := NewManifestWriter(WriterOptions{
		Directory: dir,
		Tracker:   cache.NewTracker(c, time.Hour),
	})
	ctx := context.Background()

	first, err := w.Write(ctx, chunkChain())
	require.NoError(t, err)
	assert.True(t, first.Written)

	second, err := w.Write(ctx, chunkChain())
	require.NoError(t, err)
	assert.True(t, second.Unchanged)
	assert.False(t, second.Written)

	// a removed file is written again even though the digest matches
	require.NoError(t, os.Remove(first.Path))
	third, err := w.Write(ctx, chunkChain())
	require.NoError(t, err)
	assert.True(t, third.Written)

	fourth, err := w.Write(ctx, nil)
	require.NoError(t, err)
	assert.True(t, fourth.Written)
	assert.Equal(t, "null", testutil.ReadFile(t, first.Path))
}

// TestManifestWriter_WriteCacheEditedFile tests that a cached digest never
// hides a file changed on disk since the last write
func TestManifestWriter_WriteCacheEditedFile(t *testing.T) {
	tests := []struct {
		name   string
		gzip   bool
		target string
	}{
		{"manifest edited", false, DefaultFileName},
		{"manifest edited with gzip", true, DefaultFileName},
		{"gzip copy edited", true, DefaultFileName + GzipSuffix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := cache.NewBadgerCache(cache.Options{InMemory: true})
			require.NoError(t, err)
			defer c.Close()

			dir := t.TempDir()
			w := NewManifestWriter(WriterOptions{
				Directory: dir,
				Gzip:      tt.gzip,
				Tracker:   cache.NewTracker(c, time.Hour),
			})
			ctx := context.Background()

			first, err := w.Write(ctx, chunkChain())
			require.NoError(t, err)
			require.True(t, first.Written)

			testutil.WriteFile(t, dir, tt.target, `{"edited":true}`)

			second, err := w.Write(ctx, chunkChain())
			require.NoError(t, err)
			assert.True(t, second.Written)
			assert.False(t, second.Unchanged)
			assert.Equal(t, `{"id":"chunk","js":["index.js"],"next":null}`, testutil.ReadFile(t, first.Path))
			if tt.gzip {
				assert.Equal(t, first.GzipContent, []byte(testutil.ReadFile(t, first.GzipPath)))
			}

			third, err := w.Write(ctx, chunkChain())
			require.NoError(t, err)
			assert.True(t, third.Unchanged)
		})
	}
}

// TestManifestWriter_FailedWriteDropsDigest tests that a write failing
// halfway leaves no digest behind
func TestManifestWriter_FailedWriteDropsDigest(t *testing.T) {
	c, err := cache.NewBadgerCache(cache.Options{InMemory: true})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	tracker := cache.NewTracker(c, time.Hour)
	path := filepath.Join("dist", DefaultFileName)
	content := []byte(`{"id":"chunk","js":["index.js"],"next":null}`)
	require.NoError(t, tracker.Record(ctx, path, content))

	ctrl := gomock.NewController(t)
	fsMock := mocks.NewMockFileSystem(ctrl)
	fsMock.EXPECT().MkdirAll("dist", gomock.Any()).Return(nil)
	fsMock.EXPECT().ReadFile(path).Return([]byte(`{"stale":true}`), nil)
	gomock.InOrder(
		fsMock.EXPECT().WriteFile(path, content, gomock.Any()).Return(nil),
		fsMock.EXPECT().WriteFile(path+GzipSuffix, gomock.Any(), gomock.Any()).Return(errors.New("disk full")),
	)

	w := NewManifestWriter(WriterOptions{Directory: "dist", Gzip: true, FileSystem: fsMock, Tracker: tracker})
	_, err = w.Write(ctx, chunkChain())

	require.Error(t, err)
	assert.False(t, tracker.Unchanged(ctx, path, content))
}

// TestManifestWriter_CancelledContext tests that no I/O happens after cancellation
func TestManifestWriter_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsMock := mocks.NewMockFileSystem(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewManifestWriter(WriterOptions{Directory: "dist", FileSystem: fsMock})
	_, err := w.Write(ctx, chunkChain())

	assert.ErrorIs(t, err, context.Canceled)
}

// TestManifestWriter_FileSystemErrors tests error wrapping of filesystem failures
func TestManifestWriter_FileSystemErrors(t *testing.T) {
	diskFull := errors.New("no space left on device")
	path := filepath.Join("dist", DefaultFileName)

	tests := []struct {
		name   string
		gzip   bool
		setup  func(m *mocks.MockFileSystem)
		wantOp string
		wantAt string
	}{
		{
			name: "mkdir fails",
			setup: func(m *mocks.MockFileSystem) {
				m.EXPECT().MkdirAll("dist", fs.FileMode(0755)).Return(fs.ErrPermission)
			},
			wantOp: "mkdir",
			wantAt: "dist",
		},
		{
			name: "write fails",
			setup: func(m *mocks.MockFileSystem) {
				m.EXPECT().MkdirAll("dist", gomock.Any()).Return(nil)
				m.EXPECT().WriteFile(path, gomock.Any(), fs.FileMode(0644)).Return(diskFull)
			},
			wantOp: "write",
			wantAt: path,
		},
		{
			name: "gzip write fails",
			gzip: true,
			setup: func(m *mocks.MockFileSystem) {
				m.EXPECT().MkdirAll("dist", gomock.Any()).Return(nil)
				gomock.InOrder(
					m.EXPECT().WriteFile(path, gomock.Any(), gomock.Any()).Return(nil),
					m.EXPECT().WriteFile(path+GzipSuffix, gomock.Any(), gomock.Any()).Return(diskFull),
				)
			},
			wantOp: "write",
			wantAt: path + GzipSuffix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fsMock := mocks.NewMockFileSystem(ctrl)
			tt.setup(fsMock)

			w := NewManifestWriter(WriterOptions{Directory: "dist", Gzip: tt.gzip, FileSystem: fsMock})
			result, err := w.Write(context.Background(), chunkChain())

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrWriteFailed)
			var fsErr *domain.FileSystemError
			require.ErrorAs(t, err, &fsErr)
			assert.Equal(t, tt.wantOp, fsErr.Op)
			assert.Equal(t, tt.wantAt, fsErr.Path)
		})
	}
}

// TestManifestWriter_MergeReadError tests that unreadable files are treated as absent
func TestManifestWriter_MergeReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsMock := mocks.NewMockFileSystem(ctrl)
	path := filepath.Join("dist", "m.json")

	var written []byte
	fsMock.EXPECT().MkdirAll("dist", gomock.Any()).Return(nil)
	fsMock.EXPECT().ReadFile(path).Return(nil, fs.ErrPermission)
	fsMock.EXPECT().WriteFile(path, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ string, data []byte, _ fs.FileMode) error {
			written = bytes.Clone(data)
			return nil
		})

	w := NewManifestWriter(WriterOptions{Directory: "dist", FileName: "m.json", Merge: true, FileSystem: fsMock})
	result, err := w.Write(context.Background(), chunkChain())

	require.NoError(t, err)
	assert.False(t, result.Merged)
	assert.Equal(t, `{"id":"chunk","js":["index.js"],"next":null}`, string(written))
}
