package testutil

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/quantmind-br/assets-manifest-go/internal/utils"
	"github.com/rs/zerolog"
)

// NewTestLogger creates a logger that discards output, tagged with the test name
func NewTestLogger(t *testing.T) *utils.Logger {
	t.Helper()

	zlogger := zerolog.New(io.Discard).With().
		Timestamp().
		Str("test", t.Name()).
		Logger()

	return &utils.Logger{Logger: zlogger}
}

// LogBuffer is a concurrency-safe sink for captured JSON log lines
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewCapturingLogger creates a debug-level JSON logger writing into the returned buffer
func NewCapturingLogger(t *testing.T) (*utils.Logger, *LogBuffer) {
	t.Helper()

	buf := &LogBuffer{}
	logger := utils.NewLogger(utils.LoggerOptions{
		Level:  "debug",
		Format: "json",
		Output: buf,
	})
	return logger, buf
}
