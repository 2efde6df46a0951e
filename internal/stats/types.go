package stats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// Document is the subset of the bundler stats output the manifest needs
type Document struct {
	Hash       string       `json:"hash,omitempty"`
	OutputPath string       `json:"outputPath,omitempty"`
	PublicPath string       `json:"publicPath,omitempty"`
	Chunks     []ChunkStats `json:"chunks"`
}

// ChunkStats is one chunk entry of the stats output
type ChunkStats struct {
	ID      *domain.ChunkID `json:"id"`
	Files   []string        `json:"files"`
	Parents []ParentRef     `json:"parents,omitempty"`
	Names   []string        `json:"names,omitempty"`
	Entry   bool            `json:"entry,omitempty"`
	Initial bool            `json:"initial,omitempty"`
}

// ParentRef is a parent chunk given either as an id or as a chunk object
// carrying an id (older bundler versions emit the latter).
type ParentRef struct {
	ID domain.ChunkID
}

// UnmarshalJSON accepts an id literal or an object with an id field
func (p *ParentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var ref struct {
			ID *domain.ChunkID `json:"id"`
		}
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		if ref.ID == nil {
			return fmt.Errorf("parent reference: %w", ErrMissingChunkID)
		}
		p.ID = *ref.ID
		return nil
	}
	return p.ID.UnmarshalJSON(data)
}

// MarshalJSON writes the parent as its id
func (p ParentRef) MarshalJSON() ([]byte, error) {
	return p.ID.MarshalJSON()
}

// Compilation maps the stats document onto the domain model
func (d *Document) Compilation() (*domain.Compilation, error) {
	chunks := make([]domain.Chunk, len(d.Chunks))
	for i, cs := range d.Chunks {
		if cs.ID == nil {
			return nil, fmt.Errorf("chunk %d: %w", i, ErrMissingChunkID)
		}

		parents := make([]domain.ChunkID, len(cs.Parents))
		for j, p := range cs.Parents {
			parents[j] = p.ID
		}

		chunks[i] = domain.Chunk{
			ID:      *cs.ID,
			Files:   append([]string(nil), cs.Files...),
			Parents: parents,
		}
	}

	return &domain.Compilation{
		Hash:       d.Hash,
		OutputPath: d.OutputPath,
		PublicPath: d.PublicPath,
		Chunks:     chunks,
	}, nil
}
