package mp4

import (
	"io"

	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/types"
)

// Codec reads and writes the ilst of an MP4 file.
type Codec struct {
	// Namespace is the mean of new freeform atoms; empty means
	// ItunesNamespace.
	Namespace string
}

// Supports reports whether key can be stored in an ilst.
func (Codec) Supports(key types.FrameKey) bool {
	return Supports(key)
}

// movie is a loaded moov box and its place in the file.
type movie struct {
	Box  *Box
	Root *node
}

func loadMovie(sr *binary.SafeReader) (*movie, error) {
	top, err := boxes(sr, 0, sr.Size())
	var moov *Box
	for _, b := range top {
		if b.Type == "moov" {
			moov = b
			break
		}
	}
	if moov == nil {
		if err != nil {
			return nil, errors.Wrap(err, "scan top-level boxes")
		}
		return nil, &types.CorruptedFileError{Path: sr.Path(), Reason: "no moov box"}
	}

	raw, err := sr.Bytes(moov.Offset, int(moov.Size), "moov box")
	if err != nil {
		return nil, err
	}
	root, _, err := parseNode(raw)
	if err != nil {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: moov.Offset, Reason: err.Error()}
	}
	return &movie{Box: moov, Root: root}, nil
}

// ilst returns the item list node, or nil.
func (m *movie) ilst() *node {
	meta := m.Root.path("udta", "meta")
	if meta == nil {
		return nil
	}
	return meta.child("ilst")
}

// Read decodes every ilst item.
func (c Codec) Read(r io.ReaderAt, size int64, path string) (*types.File, error) {
	m, err := loadMovie(binary.NewSafeReader(r, size, path))
	if err != nil {
		return nil, errors.Wrap(err, "read moov")
	}
	f := &types.File{Tags: make(types.Tags), Format: types.FormatItunes}
	ilst := m.ilst()
	if ilst == nil {
		return f, nil
	}
	items, _, err := parseChildren(ilst.payload())
	if err != nil {
		return nil, &types.CorruptedFileError{Path: path, Offset: m.Box.Offset, Reason: errors.Wrap(err, "read ilst").Error()}
	}
	for _, n := range items {
		it, err := parseItem(n)
		if err != nil {
			continue
		}
		f.Freeforms = append(f.Freeforms, it.decode(f.Tags, c.Namespace)...)
	}
	return f, nil
}

// Write rebuilds the ilst with the changes applied and splices it back
// into moov. Untargeted items keep their bytes. The udta, meta and ilst
// boxes are created when missing.
func (c Codec) Write(w io.Writer, r io.ReaderAt, size int64, path string, changes types.Tags) error {
	sr := binary.NewSafeReader(r, size, path)
	m, err := loadMovie(sr)
	if err != nil {
		return errors.Wrap(err, "read moov")
	}

	var (
		kept    []*node
		tail    []byte
		current = make(types.Tags)
	)
	if old := m.ilst(); old != nil {
		var items []*node
		items, tail, err = parseChildren(old.payload())
		if err != nil {
			return errors.Wrap(err, "read ilst")
		}
		for _, n := range items {
			it, err := parseItem(n)
			if err != nil {
				kept = append(kept, n)
				continue
			}
			it.decode(current, c.Namespace)
			if !it.targeted(changes, c.Namespace) {
				kept = append(kept, n)
			}
		}
	}

	added, err := c.encode(changes, current.Merge(changes))
	if err != nil {
		return err
	}
	ilst := &node{Type: "ilst", Children: append(kept, added...), Tail: tail}
	spliceIlst(m.Root, ilst)

	oldSize := int64(m.Box.Size)
	delta := m.Root.size() - oldSize
	if err := shiftChunkOffsets(m.Root, m.Box.End(), delta); err != nil {
		return &types.CorruptedFileError{Path: path, Offset: m.Box.Offset, Reason: err.Error()}
	}

	if _, err := io.Copy(w, io.NewSectionReader(r, 0, m.Box.Offset)); err != nil {
		return errors.Wrap(err, "copy leading boxes")
	}
	if _, err := w.Write(m.Root.marshal(nil)); err != nil {
		return errors.Wrap(err, "write moov")
	}
	if _, err := io.Copy(w, io.NewSectionReader(r, m.Box.End(), size-m.Box.End())); err != nil {
		return errors.Wrap(err, "copy trailing boxes")
	}
	return nil
}

// encode builds new items for the targeted keys in key order.
func (c Codec) encode(changes, merged types.Tags) ([]*node, error) {
	var out []*node
	pairs := make(map[string]bool)
	for _, key := range (types.Changes{Tags: changes}).TargetKeys() {
		if !Supports(key) {
			continue
		}
		if code, _, ok := pairAtom(key); ok {
			if pairs[code] {
				continue
			}
			pairs[code] = true
			n, err := encodePair(code, merged)
			if err != nil {
				return nil, err
			}
			if n != nil {
				out = append(out, n)
			}
			continue
		}
		nodes, err := encodeKey(key, changes[key], c.Namespace)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", key)
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// spliceIlst puts ilst under moov > udta > meta, creating the path.
func spliceIlst(moov *node, ilst *node) {
	udta := moov.child("udta")
	if udta == nil {
		udta = &node{Type: "udta"}
		moov.Children = append(moov.Children, udta)
	}
	meta := udta.child("meta")
	if meta == nil {
		meta = &node{Type: "meta", Prefix: []byte{0, 0, 0, 0}, Children: []*node{handler()}}
		udta.Children = append(udta.Children, meta)
	}
	for i, c := range meta.Children {
		if c.Type == "ilst" {
			meta.Children[i] = ilst
			return
		}
	}
	meta.Children = append(meta.Children, ilst)
}

// handler builds the hdlr box iTunes expects ahead of an ilst.
func handler() *node {
	payload := make([]byte, 0, 25)
	payload = append(payload, 0, 0, 0, 0) // version/flags
	payload = append(payload, 0, 0, 0, 0) // pre_defined
	payload = append(payload, "mdir"...)
	payload = append(payload, "appl"...)
	payload = append(payload, make([]byte, 8)...)
	payload = append(payload, 0) // empty name
	return leaf("hdlr", payload)
}
