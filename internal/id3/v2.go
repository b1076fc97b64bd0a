package id3

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/textenc"
	"github.com/simonhull/tagengine/internal/types"
)

// V2Codec reads and writes an ID3v2 tag at the start of a file.
//
// Major is the version used when the file has no tag yet; an existing
// tag is always rewritten in its own version.
type V2Codec struct {
	Major       byte
	Padding     int
	PreferUTF16 bool
}

// Supports reports true for every key: keys without a native frame are
// stored in TXXX frames.
func (c V2Codec) Supports(key types.FrameKey) bool {
	return key.Valid()
}

// Read decodes the primary ID3v2 tag.
func (c V2Codec) Read(r io.ReaderAt, size int64, path string) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)
	locs, err := ScanTags(sr)
	if err != nil {
		return nil, errors.Wrap(err, "scan ID3v2 tags")
	}
	loc, ok := Primary(locs)
	if !ok {
		return nil, errors.Wrap(types.ErrNoTag, "ID3v2")
	}
	h, body, err := tagBody(sr, loc)
	if err != nil {
		return nil, errors.Wrap(err, "read ID3v2 body")
	}
	table := tables[h.Major]

	tags := make(types.Tags)
	for _, f := range parseFrames(h.Major, body) {
		if _, ok := table.frameKey(f); !ok || f.opaque() {
			continue
		}
		d, err := table.decodeFrame(h.Major, f)
		if err != nil {
			// A malformed frame loses its own value only.
			continue
		}
		for _, v := range d.Values {
			tags.Add(d.Key, v)
		}
	}
	return &types.File{Tags: tags, Format: loc.Format}, nil
}

// Write rewrites the primary tag with changes applied, or inserts a new
// tag at the start of the file. Untargeted frames are copied verbatim.
func (c V2Codec) Write(w io.Writer, r io.ReaderAt, size int64, path string, changes types.Tags) error {
	sr := binary.NewSafeReader(r, size, path)
	locs, err := ScanTags(sr)
	if err != nil {
		return errors.Wrap(err, "scan ID3v2 tags")
	}

	major := c.Major
	var kept []rawFrame
	loc, found := Primary(locs)
	if found {
		h, body, err := tagBody(sr, loc)
		if err != nil {
			return errors.Wrap(err, "read ID3v2 body")
		}
		major = h.Major
		kept = parseFrames(major, body)
	}
	table, ok := tables[major]
	if !ok {
		return errors.Errorf("unsupported ID3v2 version 2.%d", major)
	}

	var frames [][]byte
	for _, f := range kept {
		if key, ok := table.frameKey(f); ok {
			if _, targeted := changes[key]; targeted {
				continue
			}
		}
		frames = append(frames, f.Raw)
	}
	targets := (types.Changes{Tags: changes}).TargetKeys()
	for _, key := range targets {
		encoded, err := c.encodeKey(table, major, key, changes[key])
		if err != nil {
			return errors.Wrapf(err, "encode %s", key)
		}
		frames = append(frames, encoded...)
	}

	tag, err := c.assemble(major, frames)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, io.NewSectionReader(r, 0, loc.Offset)); err != nil {
		return errors.Wrap(err, "copy leading data")
	}
	if _, err := w.Write(tag); err != nil {
		return errors.Wrap(err, "write ID3v2 tag")
	}
	if _, err := io.Copy(w, io.NewSectionReader(r, loc.End, size-loc.End)); err != nil {
		return errors.Wrap(err, "copy audio")
	}
	return nil
}

func (c V2Codec) assemble(major byte, frames [][]byte) ([]byte, error) {
	n := 0
	for _, f := range frames {
		n += len(f)
	}
	padding := max(c.Padding, 0)
	if n+padding > binary.MaxSynchsafe {
		return nil, errors.Errorf("ID3v2 tag of %d bytes exceeds the maximum size", n+padding)
	}
	var buf bytes.Buffer
	buf.Grow(headerSize + n + padding)
	sw := binary.NewSafeWriter(&buf)
	_ = sw.WriteString("ID3")
	_ = binary.Write(sw, major)
	_ = binary.Write(sw, uint16(0)) // revision, flags
	_ = sw.WriteSynchsafe(uint32(n + padding))
	for _, f := range frames {
		_ = sw.WriteBytes(f)
	}
	if err := sw.WriteBytes(make([]byte, padding)); err != nil {
		return nil, errors.Wrap(err, "assemble ID3v2 tag")
	}
	return buf.Bytes(), nil
}

// encodeKey produces the frames for one targeted key. An empty sequence
// yields no frames, which deletes the key.
func (c V2Codec) encodeKey(table *frameTable, major byte, key types.FrameKey, values []types.TagValue) ([][]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	var out [][]byte
	emit := func(id string, payload []byte, err error) error {
		if err != nil {
			return err
		}
		f, err := encodeFrame(major, id, payload)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	}

	switch key {
	case types.KeyComments:
		for _, v := range values {
			cm, ok := v.(types.Comment)
			if !ok {
				cm = types.Comment{Text: types.TextOf(v)}
			}
			enc := chooseEncoding(c.PreferUTF16, cm.Description, cm.Text)
			p, err := encodeLangText(enc, cm.Language, cm.Description, cm.Text)
			if err := emit(table.ids.comment, p, err); err != nil {
				return nil, err
			}
		}
		return out, nil
	case types.KeyUnsyncedLyrics:
		for _, v := range values {
			text := types.TextOf(v)
			p, err := encodeLangText(chooseEncoding(c.PreferUTF16, text), "", "", text)
			if err := emit(table.ids.lyrics, p, err); err != nil {
				return nil, err
			}
		}
		return out, nil
	case types.KeyAttachedPicture:
		for _, v := range values {
			pic, ok := v.(types.Picture)
			if !ok {
				continue
			}
			p, err := encodePicture(major, chooseEncoding(c.PreferUTF16, pic.Description), pic)
			if err := emit(table.ids.picture, p, err); err != nil {
				return nil, err
			}
		}
		return out, nil
	case types.KeyUserDefinedText:
		for _, v := range values {
			ut, ok := v.(types.UserText)
			if !ok {
				ut = types.UserText{Value: types.TextOf(v)}
			}
			enc := chooseEncoding(c.PreferUTF16, ut.Description, ut.Value)
			p, err := encodeUserText(enc, ut.Description, []string{ut.Value})
			if err := emit(table.ids.userText, p, err); err != nil {
				return nil, err
			}
		}
		return out, nil
	case types.KeyUserDefinedURL:
		for _, v := range values {
			u, ok := v.(types.UserURL)
			if !ok {
				u = types.UserURL{URL: types.TextOf(v)}
			}
			p, err := encodeUserURL(chooseEncoding(c.PreferUTF16, u.Description), u.Description, u.URL)
			if err := emit(table.ids.userURL, p, err); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	texts := make([]string, 0, len(values))
	for _, v := range values {
		texts = append(texts, types.TextOf(v))
	}
	id, native := table.nativeID(key)
	switch {
	case native && isURLFrame(id):
		for _, url := range texts {
			if err := emit(id, textenc.EncodeLatin1(url), nil); err != nil {
				return nil, err
			}
		}
	case native:
		texts = joinValues(major, texts)
		p, err := encodeText(chooseEncoding(c.PreferUTF16, texts...), texts)
		if err := emit(id, p, err); err != nil {
			return nil, err
		}
	default:
		texts = joinValues(major, texts)
		desc := key.FreeformName()
		p, err := encodeUserText(chooseEncoding(c.PreferUTF16, append([]string{desc}, texts...)...), desc, texts)
		if err := emit(table.ids.userText, p, err); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// joinValues keeps values separate in ID3v2.4, which has a native
// separator, and joins them with "; " for earlier versions.
func joinValues(major byte, texts []string) []string {
	if major == 4 || len(texts) < 2 {
		return texts
	}
	return []string{strings.Join(texts, multiSeparator)}
}
