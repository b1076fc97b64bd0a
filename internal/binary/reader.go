// Package binary provides bounds-checked binary reading and writing
// primitives shared by every container codec.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/simonhull/tagengine/internal/types"
)

// Unsigned is the set of fixed-width integers the readers and writers handle.
type Unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// sizeOf returns the encoded width of T in bytes.
func sizeOf[T Unsigned]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// decode converts a byte slice of sizeOf[T] bytes using order.
func decode[T Unsigned](buf []byte, order binary.ByteOrder) T {
	switch len(buf) {
	case 1:
		return T(buf[0])
	case 2:
		return T(order.Uint16(buf))
	case 4:
		return T(order.Uint32(buf))
	default:
		return T(order.Uint64(buf))
	}
}

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// NewBytesReader wraps an in-memory buffer, e.g. a frame or packet payload.
func NewBytesReader(b []byte, path string) *SafeReader {
	return NewSafeReader(bytes.NewReader(b), int64(len(b)), path)
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the number of readable bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt fills b from offset off. what names the field for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off >= sr.size || off+int64(len(b)) > sr.size {
		if len(b) == 0 && off == sr.size {
			return nil
		}
		return &types.OutOfBoundsError{
			Path:   sr.path,
			What:   what,
			Offset: off,
			Length: len(b),
			Size:   sr.size,
		}
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}
	return nil
}

// Bytes reads n bytes at off into a fresh slice.
func (sr *SafeReader) Bytes(off int64, n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, &types.OutOfBoundsError{Path: sr.path, What: what, Offset: off, Length: n, Size: sr.size}
	}
	buf := make([]byte, n)
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// Read reads a big-endian value of type T from the given offset.
func Read[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		var zero T
		return zero, err
	}
	return decode[T](buf, binary.BigEndian), nil
}

// Reader provides sequential reading with automatic offset tracking.
type Reader struct {
	*SafeReader
	offset int64
	order  binary.ByteOrder
}

// NewReader creates a big-endian Reader starting at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{SafeReader: sr, offset: offset, order: binary.BigEndian}
}

// NewReaderLE creates a little-endian Reader (Vorbis comments, Ogg headers).
func NewReaderLE(sr *SafeReader, offset int64) *Reader {
	return &Reader{SafeReader: sr, offset: offset, order: binary.LittleEndian}
}

// ReadValue reads a numeric value in the reader's byte order and advances the offset.
func ReadValue[T Unsigned](r *Reader, what string) (T, error) {
	buf := make([]byte, sizeOf[T]())
	if err := r.SafeReader.ReadAt(buf, r.offset, what); err != nil {
		var zero T
		return zero, err
	}
	r.offset += int64(len(buf))
	return decode[T](buf, r.order), nil
}

// ReadBytes reads n bytes and advances the offset.
func (r *Reader) ReadBytes(n int, what string) ([]byte, error) {
	buf, err := r.SafeReader.Bytes(r.offset, n, what)
	if err != nil {
		return nil, err
	}
	r.offset += int64(n)
	return buf, nil
}

// ReadString reads a string of the given length and advances the offset.
func (r *Reader) ReadString(length int, what string) (string, error) {
	buf, err := r.ReadBytes(length, what)
	return string(buf), err
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// ChainReader allows chaining multiple reads with deferred error checking.
type ChainReader struct {
	*Reader
	err error
}

// NewChainReader creates a new ChainReader.
func NewChainReader(r *Reader) *ChainReader {
	return &ChainReader{Reader: r}
}

// ReadChained reads a value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T Unsigned](cr *ChainReader, what string) T {
	if cr.err != nil {
		var zero T
		return zero
	}
	val, err := ReadValue[T](cr.Reader, what)
	if err != nil {
		cr.err = err
	}
	return val
}

// Bytes reads n bytes, accumulating any error.
func (cr *ChainReader) Bytes(n int, what string) []byte {
	if cr.err != nil {
		return nil
	}
	b, err := cr.Reader.ReadBytes(n, what)
	if err != nil {
		cr.err = err
	}
	return b
}

// String reads a string, accumulating any error.
func (cr *ChainReader) String(length int, what string) string {
	return string(cr.Bytes(length, what))
}

// Error returns the accumulated error, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}
