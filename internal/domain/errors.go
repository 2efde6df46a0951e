package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrCyclicDependency indicates the chunk graph contains a cycle
	ErrCyclicDependency = errors.New("cyclic dependency between chunks")

	// ErrCorruptManifest indicates an existing manifest could not be parsed for merging
	ErrCorruptManifest = errors.New("existing manifest is not a valid JSON object")

	// ErrWriteFailed indicates writing output failed
	ErrWriteFailed = errors.New("write failed")

	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidChunkID indicates a chunk id that is neither a string nor a number
	ErrInvalidChunkID = errors.New("chunk id must be a string or a number")

	// ErrPublishNotConfigured indicates publishing was requested without a bucket
	ErrPublishNotConfigured = errors.New("publish target not configured")
)

// FileSystemError represents a failed filesystem primitive
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// Is reports write-type failures as ErrWriteFailed
func (e *FileSystemError) Is(target error) bool {
	return target == ErrWriteFailed && (e.Op == "write" || e.Op == "mkdir")
}

// NewFileSystemError creates a new FileSystemError
func NewFileSystemError(op, path string, err error) *FileSystemError {
	return &FileSystemError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// ParseError represents an existing manifest that is not valid structured data
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrCorruptManifest
func (e *ParseError) Is(target error) bool {
	return target == ErrCorruptManifest
}

// NewParseError creates a new ParseError
func NewParseError(path string, err error) *ParseError {
	return &ParseError{
		Path: path,
		Err:  err,
	}
}

// BuildError ties a failure to the build that produced it
type BuildError struct {
	Build string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Build, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError creates a new BuildError
func NewBuildError(build string, err error) *BuildError {
	return &BuildError{
		Build: build,
		Err:   err,
	}
}
