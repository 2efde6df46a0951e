package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ChunkID identifies a chunk within one compilation. Bundlers emit either
// numeric or string ids; the JSON literal type is preserved on output.
type ChunkID struct {
	value   string
	numeric bool
}

// StringID creates a string chunk id
func StringID(s string) ChunkID {
	return ChunkID{value: s}
}

// NumericID creates a numeric chunk id
func NumericID(n int64) ChunkID {
	return ChunkID{value: strconv.FormatInt(n, 10), numeric: true}
}

// String returns the id text without JSON quoting
func (id ChunkID) String() string {
	return id.value
}

// IsNumeric reports whether the id was a JSON number
func (id ChunkID) IsNumeric() bool {
	return id.numeric
}

// IsZero reports whether the id was never set
func (id ChunkID) IsZero() bool {
	return id.value == "" && !id.numeric
}

// Key returns a lookup key that keeps 1 and "1" apart
func (id ChunkID) Key() string {
	if id.numeric {
		return "n:" + id.value
	}
	return "s:" + id.value
}

// MarshalJSON encodes the id as its original JSON literal type
func (id ChunkID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a JSON string or number
func (id *ChunkID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidChunkID
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidChunkID, err)
		}
		*id = StringID(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidChunkID, err)
		}
		*id = ChunkID{value: n.String(), numeric: true}
		return nil
	default:
		return fmt.Errorf("%w: got %s", ErrInvalidChunkID, data)
	}
}

// Chunk is a bundler output unit with the fields the manifest needs
type Chunk struct {
	ID      ChunkID   `json:"id"`
	Files   []string  `json:"files"`
	Parents []ChunkID `json:"parents,omitempty"`
}

// Compilation is the result of one bundling pass
type Compilation struct {
	Hash       string
	OutputPath string
	PublicPath string
	Chunks     []Chunk
}

// ChunkIDs returns the ids of the given chunks in order
func ChunkIDs(chunks []Chunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID.String()
	}
	return ids
}
