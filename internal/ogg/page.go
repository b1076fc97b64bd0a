// Package ogg reads and rewrites the comment header of Ogg Vorbis and
// Ogg Opus streams.
package ogg

import (
	"encoding/binary"

	"github.com/pkg/errors"

	bin "github.com/simonhull/tagengine/internal/binary"
)

const (
	pageMagic      = "OggS"
	pageHeaderSize = 27
	maxSegments    = 255
	segmentSize    = 255

	flagContinued = 0x01
	flagBOS       = 0x02
	flagEOS       = 0x04

	// granuleNone marks a page on which no packet ends.
	granuleNone = ^uint64(0)
)

// page is one physical Ogg page.
type page struct {
	Flags    byte
	Granule  uint64
	Serial   uint32
	Sequence uint32
	Segments []byte // lacing values
	Data     []byte
	Raw      []byte // the page exactly as read; nil for built pages
}

// readPage reads the page at offset and returns it with the offset of the next page.
func readPage(sr *bin.SafeReader, offset int64) (*page, int64, error) {
	cr := bin.NewChainReader(bin.NewReaderLE(sr, offset))
	magic := cr.String(4, "Ogg capture pattern")
	version := bin.ReadChained[uint8](cr, "Ogg version")
	p := &page{
		Flags:    bin.ReadChained[uint8](cr, "Ogg header type"),
		Granule:  bin.ReadChained[uint64](cr, "granule position"),
		Serial:   bin.ReadChained[uint32](cr, "stream serial"),
		Sequence: bin.ReadChained[uint32](cr, "page sequence"),
	}
	cr.Skip(4) // checksum
	nsegs := int(bin.ReadChained[uint8](cr, "segment count"))
	if err := cr.Error(); err != nil {
		return nil, 0, err
	}
	if magic != pageMagic {
		return nil, 0, errors.Errorf("invalid Ogg page at offset %d", offset)
	}
	if version != 0 {
		return nil, 0, errors.Errorf("unsupported Ogg version %d at offset %d", version, offset)
	}

	segments := cr.Bytes(nsegs, "segment table")
	if err := cr.Error(); err != nil {
		return nil, 0, err
	}
	dataSize := 0
	for _, s := range segments {
		dataSize += int(s)
	}
	total := pageHeaderSize + nsegs + dataSize
	raw, err := sr.Bytes(offset, total, "Ogg page")
	if err != nil {
		return nil, 0, err
	}

	p.Segments = raw[pageHeaderSize : pageHeaderSize+nsegs]
	p.Data = raw[pageHeaderSize+nsegs:]
	p.Raw = raw
	return p, offset + int64(total), nil
}

// marshal serializes the page and computes its checksum.
func (p *page) marshal() []byte {
	out := make([]byte, pageHeaderSize, pageHeaderSize+len(p.Segments)+len(p.Data))
	copy(out, pageMagic)
	out[5] = p.Flags
	binary.LittleEndian.PutUint64(out[6:14], p.Granule)
	binary.LittleEndian.PutUint32(out[14:18], p.Serial)
	binary.LittleEndian.PutUint32(out[18:22], p.Sequence)
	out[26] = byte(len(p.Segments))
	out = append(out, p.Segments...)
	out = append(out, p.Data...)
	binary.LittleEndian.PutUint32(out[22:26], checksum(out))
	return out
}

// renumbered returns the raw page with a new sequence number and checksum.
// The original bytes are returned when the number is unchanged.
func (p *page) renumbered(seq uint32) []byte {
	if seq == p.Sequence {
		return p.Raw
	}
	out := make([]byte, len(p.Raw))
	copy(out, p.Raw)
	binary.LittleEndian.PutUint32(out[18:22], seq)
	binary.LittleEndian.PutUint32(out[22:26], 0)
	binary.LittleEndian.PutUint32(out[22:26], checksum(out))
	return out
}

// lacing returns the segment table entries for a packet of n bytes. A
// packet whose length is a multiple of 255 ends with a zero entry.
func lacing(n int) []byte {
	segs := make([]byte, 0, n/segmentSize+1)
	for ; n >= segmentSize; n -= segmentSize {
		segs = append(segs, segmentSize)
	}
	return append(segs, byte(n))
}

// paginate lays packets out on fresh pages starting with sequence seq.
// The first page gets firstFlags; later pages are marked continued when
// they open in the middle of a packet.
func paginate(serial, seq uint32, firstFlags byte, packets [][]byte) []*page {
	var pages []*page
	cur := &page{Flags: firstFlags, Serial: serial, Sequence: seq, Granule: granuleNone}
	flush := func(continued bool) {
		pages = append(pages, cur)
		seq++
		cur = &page{Serial: serial, Sequence: seq, Granule: granuleNone}
		if continued {
			cur.Flags = flagContinued
		}
	}

	for _, pkt := range packets {
		segs := lacing(len(pkt))
		off := 0
		for i, s := range segs {
			if len(cur.Segments) == maxSegments {
				flush(i > 0)
			}
			cur.Segments = append(cur.Segments, s)
			cur.Data = append(cur.Data, pkt[off:off+int(s)]...)
			off += int(s)
			if i == len(segs)-1 {
				// Header packets carry granule position zero.
				cur.Granule = 0
			}
		}
	}
	if len(cur.Segments) > 0 {
		pages = append(pages, cur)
	}
	return pages
}
