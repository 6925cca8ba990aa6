package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
)

// Specific errors.
var (
	ErrSourceNotFound     = fmt.Errorf("feature source: %w", ErrNotFound)
	ErrStorageUnavailable = fmt.Errorf("storage: %w", ErrUnavailable)
	ErrIndexBuildFailed   = fmt.Errorf("index build: %w", ErrInternal)
)

// ParseError reports a malformed line in a line-oriented input file.
type ParseError struct {
	File string // Input file path
	Line int    // 1-based line number
	Text string // Raw line contents
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s at line %d (%q): %v", e.File, e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// StorageError reports a failed storage operation.
type StorageError struct {
	Operation string // Operation that failed (download, list, etc.)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s for %s: %v", e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IndexError reports a failure while persisting the covering index.
type IndexError struct {
	Path string // Output artifact path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("index error for %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IndexError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
