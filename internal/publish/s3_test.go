package publish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

func TestNewS3Publisher_Validation(t *testing.T) {
	valid := Config{Endpoint: "localhost:9000", AccessKey: "key", SecretKey: "secret", Bucket: "assets"}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
		isErr   error
	}{
		{name: "valid"},
		{name: "missing bucket", modify: func(c *Config) { c.Bucket = " " }, isErr: domain.ErrPublishNotConfigured},
		{name: "missing endpoint", modify: func(c *Config) { c.Endpoint = "" }, wantErr: "s3 endpoint is required"},
		{name: "missing secret", modify: func(c *Config) { c.SecretKey = "" }, wantErr: "s3 access key and secret key are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			if tt.modify != nil {
				tt.modify(&cfg)
			}

			p, err := NewS3Publisher(cfg)

			switch {
			case tt.isErr != nil:
				assert.ErrorIs(t, err, tt.isErr)
				assert.Nil(t, p)
			case tt.wantErr != "":
				assert.EqualError(t, err, tt.wantErr)
				assert.Nil(t, p)
			default:
				require.NoError(t, err)
				assert.Equal(t, "us-east-1", p.region)
				assert.Equal(t, "assets", p.bucket)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", "assets-manifest.json", "assets-manifest.json"},
		{"builds/", "/assets-manifest.json", "builds/assets-manifest.json"},
		{"/a/b/", "client/manifest.json", "a/b/client/manifest.json"},
		{" ", "./m.json", "m.json"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.prefix, tt.name))
		})
	}
}

func TestS3Publisher_Publish(t *testing.T) {
	var (
		mu    sync.Mutex
		puts  []string
		heads int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodHead:
			heads++
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			puts = append(puts, r.URL.Path)
			w.Header().Set("ETag", `"9b2cf535f27731c974343645a3985328"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	defer server.Close()

	p, err := NewS3Publisher(Config{
		Endpoint:  strings.TrimPrefix(server.URL, "http://"),
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "assets",
		Prefix:    "/web/",
	})
	require.NoError(t, err)

	ctx := context.Background()
	location, err := p.Publish(ctx, "assets-manifest.json", []byte(`{"id":"main","next":null}`))
	require.NoError(t, err)
	assert.Equal(t, "s3://assets/web/assets-manifest.json", location)

	_, err = p.Publish(ctx, "assets-manifest.json.gz", []byte{0x1f, 0x8b})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, heads, "bucket existence is checked once")
	assert.Equal(t, []string{"/assets/web/assets-manifest.json", "/assets/web/assets-manifest.json.gz"}, puts)
}

func TestS3Publisher_PublishEmptyName(t *testing.T) {
	p, err := NewS3Publisher(Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "assets"})
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), " ", nil)
	assert.EqualError(t, err, "object name is required")
}
