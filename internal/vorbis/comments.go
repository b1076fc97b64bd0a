// Package vorbis provides the Vorbis comment payload codec shared by FLAC
// and Ogg.
//
// The payload is identical in both containers: a length-prefixed vendor
// string followed by a count of length-prefixed UTF-8 "KEY=VALUE" fields.
// All integers are little-endian.
package vorbis

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"

	bin "github.com/simonhull/tagengine/internal/binary"
)

// DefaultVendor is written when a file had no comment block.
const DefaultVendor = "tagengine"

// Field is one comment entry. Name is upper-cased on parse.
type Field struct {
	Name  string
	Value string
}

// String returns the on-disk "NAME=value" form.
func (f Field) String() string {
	return f.Name + "=" + f.Value
}

// Comments is a decoded comment payload.
type Comments struct {
	Vendor string
	Fields []Field
}

// Parse decodes a comment payload. The caller strips any packet magic
// ("\x03vorbis", "OpusTags") first. Trailing bytes, such as the Vorbis
// framing bit, are ignored.
func Parse(data []byte) (*Comments, error) {
	cr := bin.NewChainReader(bin.NewReaderLE(bin.NewBytesReader(data, "vorbis comment"), 0))
	vendor := readString(cr, "vendor string")
	count := bin.ReadChained[uint32](cr, "comment count")
	if err := cr.Error(); err != nil {
		return nil, err
	}
	c := &Comments{Vendor: vendor}
	for i := range count {
		s := readString(cr, "comment")
		if err := cr.Error(); err != nil {
			return nil, errors.Wrapf(err, "comment %d of %d", i+1, count)
		}
		f, ok := ParseField(s)
		if !ok {
			// Fields without '=' violate the format and carry no value.
			continue
		}
		c.Fields = append(c.Fields, f)
	}
	return c, nil
}

// readString reads a 32-bit length followed by that many bytes.
func readString(cr *bin.ChainReader, what string) string {
	n := bin.ReadChained[uint32](cr, what+" length")
	return cr.String(int(n), what)
}

// ParseField splits "KEY=VALUE". The name is trimmed and upper-cased;
// the value is kept as is.
func ParseField(s string) (Field, bool) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return Field{}, false
	}
	return Field{Name: strings.ToUpper(strings.TrimSpace(name)), Value: value}, true
}

// Marshal encodes the payload without packet magic or framing bit.
func (c *Comments) Marshal() []byte {
	var buf bytes.Buffer
	sw := bin.NewSafeWriter(&buf)
	_ = bin.WriteLE(sw, uint32(len(c.Vendor)))
	_ = sw.WriteString(c.Vendor)
	_ = bin.WriteLE(sw, uint32(len(c.Fields)))
	for _, f := range c.Fields {
		_ = bin.WriteLE(sw, uint32(len(f.Name)+1+len(f.Value)))
		_ = sw.WriteString(f.String())
	}
	// bytes.Buffer writes do not fail.
	return buf.Bytes()
}

// Values returns the values of every field called name, in order.
func (c *Comments) Values(name string) []string {
	var out []string
	for _, f := range c.Fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}
