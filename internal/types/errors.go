package types

import (
	"errors"
	"fmt"
)

// ErrNoTag is returned by codecs when the container they handle is absent.
var ErrNoTag = errors.New("no tag present")

// OutOfBoundsError is returned when attempting to read beyond file bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// UnsupportedFormatError is returned when no codec claims a file.
type UnsupportedFormatError struct {
	Path   string
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Format)
}

// CorruptedFileError is returned when a container's structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// ReadFailedError reports an I/O error or a structurally invalid container.
//
// Public is safe to show to a user; Internal carries diagnostics.
type ReadFailedError struct {
	Path     string
	Public   string
	Internal string
	Err      error
}

func (e *ReadFailedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Public)
}

func (e *ReadFailedError) Unwrap() error { return e.Err }

// WriteFailedError reports a failure to re-serialize or replace a file.
type WriteFailedError struct {
	Path     string
	Public   string
	Internal string
	Err      error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Public)
}

func (e *WriteFailedError) Unwrap() error { return e.Err }

// InvalidValueError is returned when a value's shape does not fit its key.
type InvalidValueError struct {
	Key    FrameKey
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Key, e.Reason)
}

// UnknownKeyError is returned when a key name does not resolve.
type UnknownKeyError struct {
	Name string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown frame key %q", e.Name)
}
