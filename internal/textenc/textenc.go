// Package textenc converts between Go strings and the text encodings
// found in tag containers: ISO-8859-1, UTF-16 with or without a byte
// order mark, and UTF-8.
package textenc

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is an ID3v2 text encoding byte.
type Encoding byte

const (
	// Latin1 is ISO-8859-1, one byte per character.
	Latin1 Encoding = 0
	// UTF16 is UTF-16 introduced by a byte order mark.
	UTF16 Encoding = 1
	// UTF16BE is big-endian UTF-16 without a byte order mark (ID3v2.4 only).
	UTF16BE Encoding = 2
	// UTF8 is UTF-8 (ID3v2.4 only).
	UTF8 Encoding = 3
)

var (
	latin1   = charmap.ISO8859_1
	utf16BOM = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	utf16BE  = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
)

// String returns the conventional name of the encoding.
func (e Encoding) String() string {
	switch e {
	case Latin1:
		return "ISO-8859-1"
	case UTF16:
		return "UTF-16"
	case UTF16BE:
		return "UTF-16BE"
	case UTF8:
		return "UTF-8"
	default:
		return "unknown"
	}
}

// ParseEncoding resolves a name produced by String. Unknown names map to UTF16.
func ParseEncoding(name string) Encoding {
	switch strings.ToUpper(name) {
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return Latin1
	case "UTF-16BE":
		return UTF16BE
	case "UTF-8", "UTF8":
		return UTF8
	default:
		return UTF16
	}
}

// Valid reports whether e is one of the four defined encodings.
func (e Encoding) Valid() bool {
	return e <= UTF8
}

// Wide reports whether the encoding uses two-byte code units.
func (e Encoding) Wide() bool {
	return e == UTF16 || e == UTF16BE
}

// Terminator returns the NUL sequence that ends a string in this encoding.
func (e Encoding) Terminator() []byte {
	if e.Wide() {
		return []byte{0, 0}
	}
	return []byte{0}
}

// Decode converts b to a string. Trailing terminators are removed.
func Decode(e Encoding, b []byte) (string, error) {
	b = TrimTerminators(e, b)
	switch e {
	case Latin1:
		out, err := latin1.NewDecoder().Bytes(b)
		return string(out), err
	case UTF16:
		out, err := utf16BOM.NewDecoder().Bytes(b)
		return string(out), err
	case UTF16BE:
		out, err := utf16BE.NewDecoder().Bytes(b)
		return string(out), err
	default:
		return strings.ToValidUTF8(string(b), "\uFFFD"), nil
	}
}

// Encode converts s to bytes without a terminator. Latin-1 replaces
// characters outside the repertoire.
func Encode(e Encoding, s string) ([]byte, error) {
	switch e {
	case Latin1:
		return encoding.ReplaceUnsupported(latin1.NewEncoder()).Bytes([]byte(s))
	case UTF16:
		return utf16BOM.NewEncoder().Bytes([]byte(s))
	case UTF16BE:
		return utf16BE.NewEncoder().Bytes([]byte(s))
	default:
		return []byte(s), nil
	}
}

// DecodeLatin1 decodes an ISO-8859-1 byte string.
func DecodeLatin1(b []byte) string {
	s, _ := Decode(Latin1, b) //nolint:errcheck // every byte is valid Latin-1
	return s
}

// EncodeLatin1 encodes s as ISO-8859-1, replacing unsupported characters.
func EncodeLatin1(s string) []byte {
	b, _ := Encode(Latin1, s) //nolint:errcheck // unsupported runes are replaced
	return b
}

// IsLatin1 reports whether every rune of s fits in ISO-8859-1.
func IsLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

// TrimTerminators removes trailing NUL terminators.
func TrimTerminators(e Encoding, b []byte) []byte {
	if !e.Wide() {
		return bytes.TrimRight(b, "\x00")
	}
	for len(b) >= 2 && b[len(b)-1] == 0 && b[len(b)-2] == 0 {
		b = b[:len(b)-2]
	}
	return b
}

// Cut splits b at the first terminator. For wide encodings the terminator
// must start on an even offset. ok is false when no terminator exists, in
// which case field is all of b.
func Cut(e Encoding, b []byte) (field, rest []byte, ok bool) {
	if !e.Wide() {
		if i := bytes.IndexByte(b, 0); i >= 0 {
			return b[:i], b[i+1:], true
		}
		return b, nil, false
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i], b[i+2:], true
		}
	}
	return b, nil, false
}

// SplitAll splits b on every terminator, dropping a trailing empty field.
func SplitAll(e Encoding, b []byte) [][]byte {
	var parts [][]byte
	for len(b) > 0 {
		field, rest, ok := Cut(e, b)
		parts = append(parts, field)
		if !ok {
			break
		}
		b = rest
	}
	return parts
}
