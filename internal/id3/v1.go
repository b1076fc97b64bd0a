package id3

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/textenc"
	"github.com/simonhull/tagengine/internal/types"
)

// V1Size is the length of an ID3v1 tail.
const V1Size = 128

// multiSeparator joins several values into one ID3v1/v2.3 text field.
const multiSeparator = "; "

// v1Keys are the only keys an ID3v1 tail can hold.
var v1Keys = map[types.FrameKey]bool{
	types.KeyTitle:       true,
	types.KeyArtist:      true,
	types.KeyAlbum:       true,
	types.KeyYear:        true,
	types.KeyComments:    true,
	types.KeyTrackNumber: true,
	types.KeyGenre:       true,
}

// v1Tag is a decoded ID3v1 tail.
type v1Tag struct {
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string
	Track   byte // 0 when absent
	Genre   byte // NoGenre when absent
	V11     bool
}

// HasV1 reports whether the last 128 bytes hold an ID3v1 tail and which revision.
func HasV1(sr *binary.SafeReader) (types.Format, bool) {
	tail, err := readV1(sr)
	if err != nil || tail == nil {
		return types.FormatUnknown, false
	}
	if tail.V11 {
		return types.FormatID3v11, true
	}
	return types.FormatID3v10, true
}

func readV1(sr *binary.SafeReader) (*v1Tag, error) {
	if sr.Size() < V1Size {
		return nil, nil
	}
	b, err := sr.Bytes(sr.Size()-V1Size, V1Size, "ID3v1 tail")
	if err != nil {
		return nil, err
	}
	if string(b[:3]) != "TAG" {
		return nil, nil
	}
	return parseV1(b), nil
}

func parseV1(b []byte) *v1Tag {
	t := &v1Tag{
		Title:  v1Field(b[3:33]),
		Artist: v1Field(b[33:63]),
		Album:  v1Field(b[63:93]),
		Year:   v1Field(b[93:97]),
		Genre:  b[127],
	}
	if b[125] == 0 {
		t.V11 = true
		t.Track = b[126]
		t.Comment = v1Field(b[97:125])
	} else {
		t.Comment = v1Field(b[97:127])
	}
	return t
}

func v1Field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(textenc.DecodeLatin1(b), " ")
}

func (t *v1Tag) tags() types.Tags {
	tags := make(types.Tags)
	tags.AddText(types.KeyTitle, t.Title)
	tags.AddText(types.KeyArtist, splitMulti(t.Artist)...)
	tags.AddText(types.KeyAlbum, t.Album)
	tags.AddText(types.KeyYear, t.Year)
	tags.AddText(types.KeyComments, t.Comment)
	if t.V11 && t.Track > 0 {
		tags.AddText(types.KeyTrackNumber, strconv.Itoa(int(t.Track)))
	}
	if t.Genre != NoGenre {
		if name := GenreName(t.Genre); name != "" {
			tags.AddText(types.KeyGenre, name)
		} else {
			tags.AddText(types.KeyGenre, strconv.Itoa(int(t.Genre)))
		}
	}
	return tags
}

func (t *v1Tag) apply(changes types.Tags) {
	for key, values := range changes {
		texts := make([]string, 0, len(values))
		for _, v := range values {
			texts = append(texts, types.TextOf(v))
		}
		first := ""
		if len(texts) > 0 {
			first = texts[0]
		}
		switch key {
		case types.KeyTitle:
			t.Title = first
		case types.KeyArtist:
			t.Artist = strings.Join(texts, multiSeparator)
		case types.KeyAlbum:
			t.Album = first
		case types.KeyYear:
			t.Year = first
		case types.KeyComments:
			t.Comment = first
		case types.KeyTrackNumber:
			t.Track = parseTrack(first)
		case types.KeyGenre:
			t.Genre = NoGenre
			if first != "" {
				t.Genre = GenreCode(first)
			}
		}
	}
	if t.Track > 0 {
		t.V11 = true
	}
}

// parseTrack reads the leading number of "3" or "3/12". Out-of-range values yield 0.
func parseTrack(s string) byte {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 255 {
		return 0
	}
	return byte(n)
}

func (t *v1Tag) bytes() []byte {
	b := make([]byte, V1Size)
	copy(b, "TAG")
	putV1Field(b[3:33], t.Title)
	putV1Field(b[33:63], t.Artist)
	putV1Field(b[63:93], t.Album)
	putV1Field(b[93:97], t.Year)
	if t.V11 {
		putV1Field(b[97:125], t.Comment)
		b[125] = 0
		b[126] = t.Track
	} else {
		putV1Field(b[97:127], t.Comment)
	}
	b[127] = t.Genre
	return b
}

func putV1Field(dst []byte, s string) {
	copy(dst, textenc.EncodeLatin1(s))
}

func splitMulti(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// V1Codec reads and writes the 128-byte ID3v1 tail.
type V1Codec struct{}

// Supports reports whether the tail has a field for key.
func (V1Codec) Supports(key types.FrameKey) bool {
	return v1Keys[key]
}

// Read decodes the ID3v1 tail.
func (V1Codec) Read(r io.ReaderAt, size int64, path string) (*types.File, error) {
	tail, err := readV1(binary.NewSafeReader(r, size, path))
	if err != nil {
		return nil, errors.Wrap(err, "read ID3v1 tail")
	}
	if tail == nil {
		return nil, errors.Wrap(types.ErrNoTag, "ID3v1")
	}
	return &types.File{Tags: tail.tags()}, nil
}

// Write merges changes into the existing tail (or an empty one) and
// emits the file with the tail rewritten or appended.
func (V1Codec) Write(w io.Writer, r io.ReaderAt, size int64, path string, changes types.Tags) error {
	sr := binary.NewSafeReader(r, size, path)
	tail, err := readV1(sr)
	if err != nil {
		return errors.Wrap(err, "read ID3v1 tail")
	}
	audioEnd := size
	if tail != nil {
		audioEnd = size - V1Size
	} else {
		tail = &v1Tag{Genre: NoGenre}
	}

	touched := false
	for key := range changes {
		touched = touched || v1Keys[key]
	}
	if !touched {
		_, err := io.Copy(w, io.NewSectionReader(r, 0, size))
		return errors.Wrap(err, "copy file")
	}

	if _, err := io.Copy(w, io.NewSectionReader(r, 0, audioEnd)); err != nil {
		return errors.Wrap(err, "copy audio")
	}
	tail.apply(changes)
	if _, err := w.Write(tail.bytes()); err != nil {
		return errors.Wrap(err, "write ID3v1 tail")
	}
	return nil
}
