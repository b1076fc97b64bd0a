package mp4

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// node is an in-memory box. Containers hold children; every other box
// keeps its bytes as read, header included.
type node struct {
	Type     string
	Raw      []byte
	Prefix   []byte // version/flags ahead of a container's children
	Children []*node
	Tail     []byte // bytes after the last child too short to be a box
}

// parseNode decodes the box at the start of b and returns it with its size.
func parseNode(b []byte) (*node, int, error) {
	if len(b) < boxHeaderSize {
		return nil, 0, errors.Errorf("truncated box header (%d bytes)", len(b))
	}
	size := uint64(binary.BigEndian.Uint32(b))
	typ := string(b[4:8])
	hdr := boxHeaderSize
	switch size {
	case 0:
		size = uint64(len(b))
	case 1:
		if len(b) < extendedHeaderSize {
			return nil, 0, errors.Errorf("truncated extended header for %q", typ)
		}
		size = binary.BigEndian.Uint64(b[8:16])
		hdr = extendedHeaderSize
	}
	if size < uint64(hdr) || size > uint64(len(b)) {
		return nil, 0, errors.Errorf("box %q has invalid size %d", typ, size)
	}

	n := &node{Type: typ}
	if !containers[typ] {
		n.Raw = b[:size]
		return n, int(size), nil
	}

	payload := b[hdr:size]
	if typ == "meta" {
		p := metaPrefix(payload)
		if len(payload) < p {
			return nil, 0, errors.New("truncated meta box")
		}
		n.Prefix = payload[:p]
		payload = payload[p:]
	}
	children, tail, err := parseChildren(payload)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "parse %q", typ)
	}
	n.Children = children
	n.Tail = tail
	return n, int(size), nil
}

// parseChildren splits b into boxes. Fewer than eight trailing bytes,
// such as the zero terminator QuickTime writes at the end of udta, are
// returned as tail.
func parseChildren(b []byte) ([]*node, []byte, error) {
	var out []*node
	for len(b) >= boxHeaderSize {
		child, size, err := parseNode(b)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, child)
		b = b[size:]
	}
	if len(b) == 0 {
		return out, nil, nil
	}
	return out, b, nil
}

// child returns the first child of type typ.
func (n *node) child(typ string) *node {
	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

// path follows a chain of child types, returning nil when one is missing.
func (n *node) path(types ...string) *node {
	cur := n
	for _, t := range types {
		if cur = cur.child(t); cur == nil {
			return nil
		}
	}
	return cur
}

// payload returns a leaf box's bytes after the header.
func (n *node) payload() []byte {
	if binary.BigEndian.Uint32(n.Raw) == 1 {
		return n.Raw[extendedHeaderSize:]
	}
	return n.Raw[boxHeaderSize:]
}

// size returns the serialized size of n.
func (n *node) size() int64 {
	if n.Raw != nil {
		return int64(len(n.Raw))
	}
	body := int64(len(n.Prefix) + len(n.Tail))
	for _, c := range n.Children {
		body += c.size()
	}
	if body+boxHeaderSize > math.MaxUint32 {
		return body + extendedHeaderSize
	}
	return body + boxHeaderSize
}

// marshal appends the serialized box to dst.
func (n *node) marshal(dst []byte) []byte {
	if n.Raw != nil {
		return append(dst, n.Raw...)
	}
	size := n.size()
	if size > math.MaxUint32 {
		dst = binary.BigEndian.AppendUint32(dst, 1)
		dst = append(dst, n.Type...)
		dst = binary.BigEndian.AppendUint64(dst, uint64(size))
	} else {
		dst = binary.BigEndian.AppendUint32(dst, uint32(size))
		dst = append(dst, n.Type...)
	}
	dst = append(dst, n.Prefix...)
	for _, c := range n.Children {
		dst = c.marshal(dst)
	}
	return append(dst, n.Tail...)
}

// leaf builds a box from its type and payload.
func leaf(typ string, payload ...[]byte) *node {
	size := boxHeaderSize
	for _, p := range payload {
		size += len(p)
	}
	raw := make([]byte, 0, size)
	raw = binary.BigEndian.AppendUint32(raw, uint32(size))
	raw = append(raw, typ...)
	for _, p := range payload {
		raw = append(raw, p...)
	}
	return &node{Type: typ, Raw: raw}
}

// walk calls fn for every node below n, depth first.
func (n *node) walk(fn func(*node) error) error {
	for _, c := range n.Children {
		if err := fn(c); err != nil {
			return err
		}
		if err := c.walk(fn); err != nil {
			return err
		}
	}
	return nil
}
