package ogg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"

	bin "github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/types"
	"github.com/simonhull/tagengine/internal/vorbis"
)

// Codec reads and rewrites the comment packet of Ogg Vorbis and Opus files.
//
// Every Vorbis or Opus stream in a multiplexed file receives the same
// changes. Other logical streams are copied through.
type Codec struct{}

// Supports reports whether key has a Vorbis comment field.
func (Codec) Supports(key types.FrameKey) bool {
	return vorbis.Supports(key)
}

// Read decodes the comment packet of the first Vorbis or Opus stream.
func (Codec) Read(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := bin.NewSafeReader(r, size, path)

	var (
		target uint32
		kind   = kindOther
		asm    assembler
	)
	for offset := int64(0); offset < size; {
		p, next, err := readPage(sr, offset)
		if err != nil {
			return nil, corrupted(path, offset, err)
		}
		start := offset
		offset = next

		if kind == kindOther {
			if p.Flags&flagBOS == 0 {
				continue
			}
			if kind = classify(firstPacket(p)); kind == kindOther {
				continue
			}
			target = p.Serial
		}
		if p.Serial != target {
			continue
		}
		if _, err := asm.feed(p, 2); err != nil {
			return nil, corrupted(path, start, err)
		}
		if !asm.done(2) {
			continue
		}
		cm, err := parseCommentPacket(kind, asm.packets[1])
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: start, Reason: err.Error()}
		}
		return &types.File{Tags: cm.Tags(), Format: types.FormatOgg}, nil
	}
	if kind == kindOther {
		return nil, errors.Wrap(types.ErrNoTag, "no Vorbis or Opus stream")
	}
	return nil, &types.CorruptedFileError{Path: path, Offset: size, Reason: kind.String() + " comment header is incomplete"}
}

func parseCommentPacket(kind streamKind, pkt []byte) (*vorbis.Comments, error) {
	magic := layouts[kind].commentMagic
	if !bytes.HasPrefix(pkt, magic) {
		return nil, errors.Errorf("second %s packet is not a comment header", kind)
	}
	cm, err := vorbis.Parse(pkt[len(magic):])
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s comments", kind)
	}
	return cm, nil
}

func buildCommentPacket(kind streamKind, cm *vorbis.Comments) []byte {
	l := layouts[kind]
	pkt := append([]byte(nil), l.commentMagic...)
	pkt = append(pkt, cm.Marshal()...)
	if l.framing {
		pkt = append(pkt, 0x01)
	}
	return pkt
}

func corrupted(path string, offset int64, err error) error {
	var oob *types.OutOfBoundsError
	if errors.As(err, &oob) {
		return err
	}
	return &types.CorruptedFileError{Path: path, Offset: offset, Reason: err.Error()}
}

// stream is the remux state of one logical stream.
type stream struct {
	kind    streamKind
	serial  uint32
	nextSeq uint32
	eos     bool

	// Header capture for editable streams.
	holding bool
	asm     assembler
	slots   []int // queue positions reserved for rebuilt header pages
}

// queued is an output page, or a placeholder for rebuilt header pages.
type queued struct {
	data  []byte
	pages [][]byte
}

// remuxer rewrites a physical bitstream page by page. While any editable
// stream is still collecting its header packets, output is queued so the
// rebuilt header pages can take the place of the originals.
type remuxer struct {
	w       io.Writer
	changes types.Tags
	streams map[uint32]*stream
	queue   []queued
	holding int
	edited  int
}

// Write replaces the comment packet of every Vorbis and Opus stream and
// re-paginates their header packets. Identification and setup packets are
// kept byte-for-byte; later pages are renumbered and otherwise untouched.
func (Codec) Write(w io.Writer, r io.ReaderAt, size int64, path string, changes types.Tags) error {
	sr := bin.NewSafeReader(r, size, path)
	m := &remuxer{w: w, changes: changes, streams: make(map[uint32]*stream)}

	for offset := int64(0); offset < size; {
		p, next, err := readPage(sr, offset)
		if err != nil {
			return corrupted(path, offset, err)
		}
		if err := m.page(p); err != nil {
			return corrupted(path, offset, err)
		}
		offset = next
	}

	for _, st := range m.streams {
		if st.holding {
			return &types.CorruptedFileError{Path: path, Offset: size,
				Reason: fmt.Sprintf("%s stream %d ends before its headers", st.kind, st.serial)}
		}
	}
	if m.edited == 0 {
		return errors.Wrap(types.ErrNoTag, "no Vorbis or Opus stream")
	}
	return m.flush()
}

func (m *remuxer) page(p *page) error {
	st, ok := m.streams[p.Serial]
	if !ok {
		st = &stream{serial: p.Serial, nextSeq: p.Sequence}
		if p.Flags&flagBOS != 0 {
			st.kind = classify(firstPacket(p))
		}
		if st.kind != kindOther {
			st.holding = true
			m.holding++
		}
		m.streams[p.Serial] = st
	}

	if !st.holding {
		data := p.renumbered(st.nextSeq)
		st.nextSeq++
		return m.emit(data)
	}

	// The ident page and the first comment page mark where rebuilt pages go.
	if len(st.slots) < 2 {
		st.slots = append(st.slots, len(m.queue))
		m.queue = append(m.queue, queued{})
	}
	if p.Flags&flagEOS != 0 {
		st.eos = true
	}
	want := layouts[st.kind].packets
	left, err := st.asm.feed(p, want)
	if err != nil {
		return err
	}
	if !st.asm.done(want) {
		return nil
	}
	if left > 0 {
		return errors.Errorf("%s stream %d has audio data on its last header page", st.kind, st.serial)
	}
	if err := m.rebuild(st); err != nil {
		return err
	}
	st.holding = false
	m.holding--
	m.edited++
	if m.holding == 0 {
		return m.flush()
	}
	return nil
}

// rebuild paginates the new header packets into the stream's slots.
func (m *remuxer) rebuild(st *stream) error {
	packets := st.asm.packets
	cm, err := parseCommentPacket(st.kind, packets[1])
	if err != nil {
		return err
	}
	if err := cm.Apply(m.changes, true); err != nil {
		return errors.Wrap(err, "apply comment changes")
	}

	headers := make([][]byte, 0, len(packets))
	headers = append(headers, packets[0], buildCommentPacket(st.kind, cm))
	headers = append(headers, packets[2:]...)

	pages := paginate(st.serial, st.nextSeq, flagBOS, headers[:1])
	pages = append(pages, paginate(st.serial, st.nextSeq+uint32(len(pages)), 0, headers[1:])...)
	if st.eos {
		pages[len(pages)-1].Flags |= flagEOS
	}
	st.nextSeq += uint32(len(pages))

	out := make([][]byte, len(pages))
	for i, p := range pages {
		out[i] = p.marshal()
	}
	if len(st.slots) == 1 {
		m.queue[st.slots[0]].pages = out
		return nil
	}
	m.queue[st.slots[0]].pages = out[:1]
	m.queue[st.slots[1]].pages = out[1:]
	return nil
}

func (m *remuxer) emit(data []byte) error {
	if m.holding > 0 {
		m.queue = append(m.queue, queued{data: data})
		return nil
	}
	_, err := m.w.Write(data)
	return errors.Wrap(err, "write page")
}

func (m *remuxer) flush() error {
	for _, q := range m.queue {
		chunks := q.pages
		if q.data != nil {
			chunks = [][]byte{q.data}
		}
		for _, c := range chunks {
			if _, err := m.w.Write(c); err != nil {
				return errors.Wrap(err, "write page")
			}
		}
	}
	m.queue = m.queue[:0]
	return nil
}
