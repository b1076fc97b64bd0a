package tagengine

import (
	"github.com/simonhull/tagengine/internal/types"
)

// ErrNoTag is returned by codecs when the container they handle is absent.
// The backend reads such files as having no tags.
var ErrNoTag = types.ErrNoTag

// UnsupportedFormatError is returned when no codec claims a file.
type UnsupportedFormatError = types.UnsupportedFormatError

// ReadFailedError reports an I/O error or a structurally invalid container.
type ReadFailedError = types.ReadFailedError

// WriteFailedError reports a failure to re-serialize or replace a file.
type WriteFailedError = types.WriteFailedError

// CorruptedFileError is the cause carried by a ReadFailedError or
// WriteFailedError when a container's structure is invalid.
type CorruptedFileError = types.CorruptedFileError

// OutOfBoundsError is the cause carried when a read runs past the end of
// the file.
type OutOfBoundsError = types.OutOfBoundsError

// InvalidValueError is returned when a value's shape does not fit its key.
type InvalidValueError = types.InvalidValueError

// UnknownKeyError is returned when a key name does not resolve.
type UnknownKeyError = types.UnknownKeyError
