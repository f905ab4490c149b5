package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidReading indicates a manually entered reading is out of range
	ErrInvalidReading = errors.New("reading has missing identifiers or out-of-range values")

	// ErrInvalidFilter indicates a filter without an engine name
	ErrInvalidFilter = errors.New("filter requires exactly one engine name")

	// ErrInvalidDays indicates a generate request outside 1..MaxGenerateDays
	ErrInvalidDays = fmt.Errorf("days must be between 1 and %d", MaxGenerateDays)

	// ErrConflict indicates the store changed since it was loaded
	ErrConflict = errors.New("store was modified since it was loaded")
)

// SchemaError reports a batch missing required columns
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("batch is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ParseError reports an unreadable import artifact or a cell that cannot be converted.
// Row is 1-based and counts the header row; zero means the artifact as a whole.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("parse import: %v", e.Err)
	}
	return fmt.Sprintf("parse row %d column %q value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError reports a store location that cannot be read or written
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
