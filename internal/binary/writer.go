package binary

import (
	"encoding/binary"
	"io"
)

// SafeWriter wraps io.Writer with sticky errors.
//
// After the first failed write every later call is a no-op, so callers
// can emit a whole structure and check Err once.
type SafeWriter struct {
	w   io.Writer
	err error
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{w: w}
}

// Err returns the first write error, if any.
func (sw *SafeWriter) Err() error {
	return sw.err
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	if sw.err != nil {
		return sw.err
	}
	_, sw.err = sw.w.Write(b)
	return sw.err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// Write writes a value of type T in big-endian byte order.
func Write[T Unsigned](sw *SafeWriter, val T) error {
	return writeOrdered(sw, val, binary.BigEndian)
}

// WriteLE writes a value of type T in little-endian byte order.
func WriteLE[T Unsigned](sw *SafeWriter, val T) error {
	return writeOrdered(sw, val, binary.LittleEndian)
}

// WriteUint24 writes a 3-byte big-endian integer.
func (sw *SafeWriter) WriteUint24(v uint32) error {
	var buf [3]byte
	PutUint24(buf[:], v)
	return sw.WriteBytes(buf[:])
}

// WriteSynchsafe writes a 4-byte synchsafe integer.
func (sw *SafeWriter) WriteSynchsafe(v uint32) error {
	var buf [4]byte
	PutSynchsafe(buf[:], v)
	return sw.WriteBytes(buf[:])
}

func writeOrdered[T Unsigned](sw *SafeWriter, val T, order binary.ByteOrder) error {
	buf := make([]byte, sizeOf[T]())
	switch len(buf) {
	case 1:
		buf[0] = byte(val)
	case 2:
		order.PutUint16(buf, uint16(val))
	case 4:
		order.PutUint32(buf, uint32(val))
	default:
		order.PutUint64(buf, uint64(val))
	}
	return sw.WriteBytes(buf)
}
