package ogg

import (
	"bytes"

	"github.com/pkg/errors"
)

type streamKind int

const (
	kindOther streamKind = iota
	kindVorbis
	kindOpus
)

func (k streamKind) String() string {
	switch k {
	case kindVorbis:
		return "Vorbis"
	case kindOpus:
		return "Opus"
	default:
		return "other"
	}
}

// headerLayout describes the header packets that open an editable stream.
type headerLayout struct {
	identMagic   []byte
	commentMagic []byte
	packets      int  // header packets before audio data
	framing      bool // comment packet ends with a framing bit
}

var layouts = map[streamKind]headerLayout{
	kindVorbis: {identMagic: []byte("\x01vorbis"), commentMagic: []byte("\x03vorbis"), packets: 3, framing: true},
	kindOpus:   {identMagic: []byte("OpusHead"), commentMagic: []byte("OpusTags"), packets: 2},
}

// classify identifies a logical stream from its first packet.
func classify(ident []byte) streamKind {
	for _, kind := range []streamKind{kindVorbis, kindOpus} {
		if bytes.HasPrefix(ident, layouts[kind].identMagic) {
			return kind
		}
	}
	return kindOther
}

// firstPacket returns the first packet on a BOS page, or nil when it
// continues onto the next page.
func firstPacket(p *page) []byte {
	n := 0
	for _, s := range p.Segments {
		n += int(s)
		if s < segmentSize {
			return p.Data[:n]
		}
	}
	return nil
}

// assembler rebuilds packets from the pages of one logical stream.
type assembler struct {
	partial []byte
	packets [][]byte
}

// feed appends the page's segments. It stops once want packets are
// complete and returns the number of segments left unread on the page.
func (a *assembler) feed(p *page, want int) (int, error) {
	if p.Flags&flagContinued == 0 && len(a.partial) > 0 {
		return 0, errors.Errorf("page %d of stream %d drops an unfinished packet", p.Sequence, p.Serial)
	}
	if p.Flags&flagContinued != 0 && a.partial == nil {
		return 0, errors.Errorf("page %d of stream %d continues a packet that never started", p.Sequence, p.Serial)
	}
	off := 0
	for i, s := range p.Segments {
		if a.partial == nil {
			a.partial = []byte{}
		}
		a.partial = append(a.partial, p.Data[off:off+int(s)]...)
		off += int(s)
		if s == segmentSize {
			continue
		}
		a.packets = append(a.packets, a.partial)
		a.partial = nil
		if len(a.packets) == want {
			return len(p.Segments) - i - 1, nil
		}
	}
	return 0, nil
}

// done reports whether want packets have been assembled.
func (a *assembler) done(want int) bool {
	return len(a.packets) >= want
}
