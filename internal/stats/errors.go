package stats

import "errors"

// Sentinel errors for the stats package
var (
	// ErrFileNotFound indicates the stats file does not exist
	ErrFileNotFound = errors.New("stats file not found")

	// ErrInvalidFormat indicates the stats file is not valid YAML or JSON
	ErrInvalidFormat = errors.New("stats must be valid YAML or JSON")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .json, .yaml, or .yml)")

	// ErrMissingChunkID indicates a chunk without an id
	ErrMissingChunkID = errors.New("chunk is missing its id")
)
