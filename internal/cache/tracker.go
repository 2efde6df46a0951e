package cache

import (
	"context"
	"time"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// Tracker remembers the digest of the last content written to each manifest
// destination, so identical rewrites can be skipped.
type Tracker struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewTracker creates a tracker over c. A zero ttl keeps entries forever.
func NewTracker(c domain.Cache, ttl time.Duration) *Tracker {
	return &Tracker{cache: c, ttl: ttl}
}

// Unchanged reports whether content matches the last recorded write to path
func (t *Tracker) Unchanged(ctx context.Context, path string, content []byte) bool {
	if t == nil || t.cache == nil {
		return false
	}
	stored, err := t.cache.Get(ctx, ManifestKey(path))
	if err != nil {
		return false
	}
	return string(stored) == Digest(content)
}

// Record stores the digest of content as the last write to path
func (t *Tracker) Record(ctx context.Context, path string, content []byte) error {
	if t == nil || t.cache == nil {
		return nil
	}
	return t.cache.Set(ctx, ManifestKey(path), []byte(Digest(content)), t.ttl)
}

// Forget drops whatever is recorded for path
func (t *Tracker) Forget(ctx context.Context, path string) error {
	if t == nil || t.cache == nil {
		return nil
	}
	return t.cache.Delete(ctx, ManifestKey(path))
}
