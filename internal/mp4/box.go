// Package mp4 reads and rewrites iTunes-style metadata in MP4 containers.
//
// The metadata lives in moov > udta > meta > ilst. Writing rebuilds the
// moov box, so every ancestor size is recomputed and the chunk offset
// tables are shifted when moov precedes the media data.
package mp4

import (
	"fmt"
	"math"

	"github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/types"
)

const (
	boxHeaderSize      = 8
	extendedHeaderSize = 16
)

// Box is the header of an MP4 box (atom).
type Box struct {
	Size     uint64 // total size including header
	Type     string // fourCC; "\xA9nam" for ©nam
	Offset   int64
	Extended bool // 64-bit size follows the fourCC
}

// HeaderSize returns the number of header bytes.
func (b *Box) HeaderSize() int64 {
	if b.Extended {
		return extendedHeaderSize
	}
	return boxHeaderSize
}

// DataOffset returns the file offset where the box payload starts.
func (b *Box) DataOffset() int64 {
	return b.Offset + b.HeaderSize()
}

// End returns the offset just past the box.
func (b *Box) End() int64 {
	return b.Offset + int64(b.Size)
}

// containers are parsed into children when a moov box is loaded.
var containers = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"stbl": true,
	"udta": true,
	"meta": true,
	"edts": true,
	"dinf": true,
}

// readBoxHeader reads a box header at offset. A size of zero extends the
// box to limit.
func readBoxHeader(sr *binary.SafeReader, offset, limit int64) (*Box, error) {
	r := binary.NewReader(sr, offset)
	size32, err := binary.ReadValue[uint32](r, "box size")
	if err != nil {
		return nil, err
	}
	typ, err := r.ReadString(4, "box type")
	if err != nil {
		return nil, err
	}

	b := &Box{Type: typ, Offset: offset}
	switch size32 {
	case 0:
		b.Size = uint64(limit - offset)
	case 1:
		size64, err := binary.ReadValue[uint64](r, "extended box size")
		if err != nil {
			return nil, err
		}
		b.Size = size64
		b.Extended = true
	default:
		b.Size = uint64(size32)
	}

	if b.Size < uint64(b.HeaderSize()) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("invalid box size %d for %q", b.Size, b.Type),
		}
	}
	if b.Size > math.MaxInt64 || b.End() > limit {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("box %q of %d bytes overruns its parent", b.Type, b.Size),
		}
	}
	return b, nil
}

// boxes lists the boxes in [start, end).
func boxes(sr *binary.SafeReader, start, end int64) ([]*Box, error) {
	var out []*Box
	for offset := start; offset+boxHeaderSize <= end; {
		b, err := readBoxHeader(sr, offset, end)
		if err != nil {
			return out, err
		}
		out = append(out, b)
		offset = b.End()
	}
	return out, nil
}

// findBox returns the first box of type typ in [start, end), or nil.
func findBox(sr *binary.SafeReader, start, end int64, typ string) (*Box, error) {
	list, err := boxes(sr, start, end)
	for _, b := range list {
		if b.Type == typ {
			return b, nil
		}
	}
	return nil, err
}

// metaPrefix returns the length of the version/flags field that opens a
// meta box. ISO files carry it; some QuickTime files go straight to hdlr.
func metaPrefix(payload []byte) int {
	if len(payload) >= 8 && string(payload[4:8]) == "hdlr" {
		return 0
	}
	return 4
}
