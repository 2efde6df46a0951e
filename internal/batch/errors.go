package batch

import "errors"

// Sentinel errors for the batch package
var (
	// ErrNoBuilds indicates the build list is empty
	ErrNoBuilds = errors.New("build list must contain at least one build")

	// ErrEmptyStats indicates a build is missing the required stats field
	ErrEmptyStats = errors.New("build stats path cannot be empty")

	// ErrDuplicateDestination indicates two builds target one manifest file
	ErrDuplicateDestination = errors.New("builds write to the same manifest file")

	// ErrInvalidFormat indicates the build list is not valid YAML or JSON
	ErrInvalidFormat = errors.New("build list must be valid YAML or JSON")

	// ErrFileNotFound indicates the build list file does not exist
	ErrFileNotFound = errors.New("build list file not found")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")
)
