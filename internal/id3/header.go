// Package id3 reads and writes ID3v1 tails and ID3v2.2, v2.3 and v2.4 tags.
package id3

import (
	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/types"
)

const (
	headerSize = 10

	flagUnsync   = 0x80
	flagExtended = 0x40
	flagFooter   = 0x10
)

// ErrBadHeader is returned when "ID3" is followed by an unsupported
// version or revision.
var ErrBadHeader = errors.New("invalid ID3v2 header")

// tagHeader is the fixed 10-byte ID3v2 header.
type tagHeader struct {
	Major    byte
	Revision byte
	Flags    byte
	Size     uint32 // body size, excluding header and footer
}

// Len returns the number of bytes the whole tag occupies.
func (h tagHeader) Len() int64 {
	n := int64(headerSize) + int64(h.Size)
	if h.Major == 4 && h.Flags&flagFooter != 0 {
		n += headerSize
	}
	return n
}

// Location is one ID3v2 tag inside a file.
type Location struct {
	Format types.Format
	Offset int64
	End    int64
}

func (l Location) major() byte {
	return l.Format.ID3v2Major()
}

func readTagHeader(sr *binary.SafeReader, off int64) (tagHeader, bool, error) {
	if off+headerSize > sr.Size() {
		return tagHeader{}, false, nil
	}
	b, err := sr.Bytes(off, headerSize, "ID3v2 header")
	if err != nil {
		return tagHeader{}, false, err
	}
	if string(b[:3]) != "ID3" {
		return tagHeader{}, false, nil
	}
	h := tagHeader{
		Major:    b[3],
		Revision: b[4],
		Flags:    b[5],
		Size:     binary.DecodeSynchsafe(b[6:10]),
	}
	if h.Major < 2 || h.Major > 4 || h.Revision == 0xFF {
		return h, true, errors.Wrapf(ErrBadHeader, "version 2.%d.%d", h.Major, h.Revision)
	}
	return h, true, nil
}

// ScanTags finds the ID3v2 tags stored back to back from the start of
// the file. A malformed first header is an error; a malformed later
// header ends the scan.
func ScanTags(sr *binary.SafeReader) ([]Location, error) {
	var locs []Location
	var off int64
	for {
		h, found, err := readTagHeader(sr, off)
		if !found {
			return locs, nil
		}
		if err != nil {
			if len(locs) == 0 {
				return nil, err
			}
			return locs, nil
		}
		end := off + h.Len()
		if end > sr.Size() {
			if len(locs) == 0 {
				return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: off, Reason: "ID3v2 tag extends past end of file"}
			}
			return locs, nil
		}
		locs = append(locs, Location{Format: types.ID3v2Format(h.Major), Offset: off, End: end})
		off = end
	}
}

// Primary picks the tag that is read and rewritten: the highest version,
// the first of equals.
func Primary(locs []Location) (Location, bool) {
	if len(locs) == 0 {
		return Location{}, false
	}
	best := locs[0]
	for _, l := range locs[1:] {
		if l.major() > best.major() {
			best = l
		}
	}
	return best, true
}

// tagBody loads the frame area of the tag at loc with tag-level
// unsynchronisation and the extended header removed.
func tagBody(sr *binary.SafeReader, loc Location) (tagHeader, []byte, error) {
	h, _, err := readTagHeader(sr, loc.Offset)
	if err != nil {
		return h, nil, err
	}
	body, err := sr.Bytes(loc.Offset+headerSize, int(h.Size), "ID3v2 body")
	if err != nil {
		return h, nil, err
	}
	if h.Flags&flagUnsync != 0 && h.Major < 4 {
		body = binary.RemoveUnsync(body)
	}
	if h.Flags&flagExtended != 0 {
		skip, err := extendedHeaderLen(h.Major, body)
		if err != nil {
			return h, nil, &types.CorruptedFileError{Path: sr.Path(), Offset: loc.Offset + headerSize, Reason: err.Error()}
		}
		body = body[skip:]
	}
	return h, body, nil
}

func extendedHeaderLen(major byte, body []byte) (int, error) {
	if len(body) < 4 {
		return 0, errors.New("truncated extended header")
	}
	var n int
	switch major {
	case 3:
		n = 4 + int(uint32(body[0])<<24|uint32(body[1])<<16|uint32(body[2])<<8|uint32(body[3]))
	case 4:
		n = int(binary.DecodeSynchsafe(body[:4]))
	default:
		// ID3v2.2 used this bit for compression, which no reader supports.
		return 0, errors.New("compressed ID3v2.2 tag")
	}
	if n < 4 || n > len(body) {
		return 0, errors.Errorf("extended header size %d out of range", n)
	}
	return n, nil
}
