package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// StatsJSON renders a minimal stats document for the given output path,
// public path and chunks
func StatsJSON(t *testing.T, outputPath, publicPath string, chunks ...domain.Chunk) string {
	t.Helper()

	type chunk struct {
		ID      domain.ChunkID   `json:"id"`
		Files   []string         `json:"files"`
		Parents []domain.ChunkID `json:"parents"`
	}
	doc := struct {
		Hash       string  `json:"hash"`
		OutputPath string  `json:"outputPath"`
		PublicPath string  `json:"publicPath"`
		Chunks     []chunk `json:"chunks"`
	}{Hash: "0123abcd", OutputPath: outputPath, PublicPath: publicPath, Chunks: []chunk{}}

	for _, c := range chunks {
		doc.Chunks = append(doc.Chunks, chunk{ID: c.ID, Files: c.Files, Parents: c.Parents})
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

// LayeredChunks returns three chunks listed child first: level-3 depends on
// level-2, which depends on level-1
func LayeredChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: domain.StringID("level-3"), Files: []string{"level-3.js", "level-3.css"}, Parents: []domain.ChunkID{domain.StringID("level-2")}},
		{ID: domain.StringID("level-2"), Files: []string{"level-2.js"}, Parents: []domain.ChunkID{domain.StringID("level-1")}},
		{ID: domain.StringID("level-1"), Files: []string{"level-1.js", "level-1.js.map"}},
	}
}
