package manifest

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

func sampleChain() *Node {
	return Project([]domain.Chunk{
		{ID: domain.StringID("runtime"), Files: []string{"runtime.js"}},
		{ID: domain.NumericID(7), Files: []string{"7.js", "7.css", "7.js.map"}},
		{ID: domain.StringID("empty")},
	}, Options{Extensions: []string{"js", "css"}, BasePath: "/static/"})
}

func TestNode_EncodeIndentMatchesMarshalIndent(t *testing.T) {
	head := sampleChain()

	compact, err := head.Encode("", "")
	require.NoError(t, err)

	var want bytes.Buffer
	require.NoError(t, json.Indent(&want, compact, "", "  "))

	got, err := head.Encode("", "  ")
	require.NoError(t, err)
	assert.Equal(t, want.String(), string(got))
}

func TestNode_EncodePretty(t *testing.T) {
	head := Project(indexChunk(), Options{Extensions: []string{"js", "map"}})

	got, err := head.Encode("", "  ")

	require.NoError(t, err)
	assert.Equal(t, `{
  "id": "chunk",
  "js": [
    "index.js"
  ],
  "map": [],
  "next": null
}`, string(got))
}

func TestNode_EncodeNil(t *testing.T) {
	var head *Node

	data, err := head.Encode("", "  ")
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	data, err = json.Marshal(head)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestNode_EncodeKeepsHTMLCharacters(t *testing.T) {
	head := Project([]domain.Chunk{{ID: domain.StringID("a"), Files: []string{"a&b<c>.js"}}},
		Options{Extensions: []string{"js"}})

	data, err := head.Encode("", "")

	require.NoError(t, err)
	assert.Equal(t, `{"id":"a","js":["a&b<c>.js"],"next":null}`, string(data))
}

func TestNode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		head *Node
	}{
		{"sample", sampleChain()},
		{"no extensions", Project(indexChunk(), Options{})},
		{"single", Project(indexChunk(), DefaultOptions())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, indent := range []string{"", "  "} {
				data, err := tt.head.Encode("", indent)
				require.NoError(t, err)

				var parsed Node
				require.NoError(t, json.Unmarshal(data, &parsed))
				assert.Equal(t, tt.head, &parsed)
			}
		})
	}
}

func TestParse_KeyOrderIndependent(t *testing.T) {
	// next before the extension groups, as older manifests wrote it
	data := []byte(`{"id":"a","next":{"id":"b","next":null,"js":["b.js"]},"js":["a.js"],"css":[]}`)

	head, err := Parse(data)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, head.IDs())
	js, _ := head.Files("js")
	assert.Equal(t, []string{"a.js"}, js)
	css, ok := head.Files("css")
	assert.True(t, ok)
	assert.Empty(t, css)
	js, _ = head.Next.Files("js")
	assert.Equal(t, []string{"b.js"}, js)
}

func TestParse_Null(t *testing.T) {
	head, err := Parse([]byte("null"))
	assert.NoError(t, err)
	assert.Nil(t, head)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"array", `[]`},
		{"truncated", `{"id":"a","next":{"id":"b"`},
		{"bad next", `{"id":"a","next":3}`},
		{"bad group", `{"id":"a","js":"a.js","next":null}`},
		{"bad id", `{"id":true,"next":null}`},
		{"trailing", `{"id":"a","next":null} {"id":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, err := Parse([]byte(tt.data))
			assert.Nil(t, head)
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestNode_AllStopsEarly(t *testing.T) {
	head := sampleChain()

	var seen []string
	for n := range head.All() {
		seen = append(seen, n.ID.String())
		if len(seen) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"runtime", "7"}, seen)
	assert.Equal(t, 3, head.Len())
	assert.Equal(t, 0, (*Node)(nil).Len())
}
