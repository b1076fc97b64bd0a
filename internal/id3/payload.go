package id3

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/textenc"
	"github.com/simonhull/tagengine/internal/types"
)

// decoded is the canonical reading of one frame.
type decoded struct {
	Key    types.FrameKey
	Values []types.TagValue
}

// frameKey returns the key a frame belongs to without decoding its
// values. ok is false for frames with no canonical mapping.
func (t *frameTable) frameKey(f rawFrame) (types.FrameKey, bool) {
	switch f.ID {
	case t.ids.comment:
		return types.KeyComments, true
	case t.ids.lyrics:
		return types.KeyUnsyncedLyrics, true
	case t.ids.picture:
		return types.KeyAttachedPicture, true
	case t.ids.userURL:
		return types.KeyUserDefinedURL, true
	case t.ids.userText:
		if f.opaque() || len(f.Data) < 1 {
			return 0, false
		}
		enc := textenc.Encoding(f.Data[0])
		desc, _, _ := textenc.Cut(enc, f.Data[1:])
		s, err := textenc.Decode(enc, desc)
		if err != nil {
			return 0, false
		}
		return t.freeformKey(s), true
	}
	key, ok := t.byID[f.ID]
	return key, ok
}

// decodeFrame turns a frame into canonical values.
func (t *frameTable) decodeFrame(major byte, f rawFrame) (decoded, error) {
	if f.opaque() {
		return decoded{}, errors.Errorf("frame %s is compressed or encrypted", f.ID)
	}
	data := f.Data
	switch f.ID {
	case t.ids.comment, t.ids.lyrics:
		enc, lang, desc, text, err := decodeLangText(data)
		if err != nil {
			return decoded{}, errors.Wrapf(err, "frame %s", f.ID)
		}
		if f.ID == t.ids.lyrics {
			return decoded{Key: types.KeyUnsyncedLyrics, Values: []types.TagValue{types.Text(text)}}, nil
		}
		c := types.Comment{Encoding: enc.String(), Language: lang, Description: desc, Text: text}
		return decoded{Key: types.KeyComments, Values: []types.TagValue{c}}, nil
	case t.ids.picture:
		p, err := decodePicture(major, data)
		if err != nil {
			return decoded{}, errors.Wrapf(err, "frame %s", f.ID)
		}
		return decoded{Key: types.KeyAttachedPicture, Values: []types.TagValue{p}}, nil
	case t.ids.userText:
		return t.decodeUserText(major, data)
	case t.ids.userURL:
		_, desc, rest, err := decodeDescribed(data)
		if err != nil {
			return decoded{}, errors.Wrapf(err, "frame %s", f.ID)
		}
		u := types.UserURL{Description: desc, URL: textenc.DecodeLatin1(textenc.TrimTerminators(textenc.Latin1, rest))}
		return decoded{Key: types.KeyUserDefinedURL, Values: []types.TagValue{u}}, nil
	}

	key, ok := t.byID[f.ID]
	if !ok {
		return decoded{}, errors.Errorf("frame %s has no mapping", f.ID)
	}
	if isURLFrame(f.ID) {
		url := textenc.DecodeLatin1(textenc.TrimTerminators(textenc.Latin1, data))
		return decoded{Key: key, Values: []types.TagValue{types.Text(url)}}, nil
	}
	texts, err := decodeTextList(data)
	if err != nil {
		return decoded{}, errors.Wrapf(err, "frame %s", f.ID)
	}
	texts = splitValues(major, key, texts)
	if key == types.KeyGenre {
		for i, g := range texts {
			texts[i] = expandGenre(g)
		}
	}
	return decoded{Key: key, Values: textValues(texts)}, nil
}

func textValues(texts []string) []types.TagValue {
	vs := make([]types.TagValue, 0, len(texts))
	for _, s := range texts {
		if s != "" {
			vs = append(vs, types.Text(s))
		}
	}
	return vs
}

// splitValues breaks "a; b" style joins apart for multi-valued keys in
// versions without a native value separator.
func splitValues(major byte, key types.FrameKey, texts []string) []string {
	if major == 4 || !key.MultiValued() {
		return texts
	}
	var out []string
	for _, s := range texts {
		out = append(out, splitMulti(s)...)
	}
	return out
}

func readEncoding(data []byte) (textenc.Encoding, []byte, error) {
	if len(data) < 1 {
		return 0, nil, errors.New("empty payload")
	}
	enc := textenc.Encoding(data[0])
	if !enc.Valid() {
		return 0, nil, errors.Errorf("invalid text encoding %d", data[0])
	}
	return enc, data[1:], nil
}

// decodeTextList reads an encoding byte followed by terminator-separated strings.
func decodeTextList(data []byte) ([]string, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, part := range textenc.SplitAll(enc, rest) {
		s, err := textenc.Decode(enc, part)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// decodeDescribed reads an encoding byte and a terminated description.
func decodeDescribed(data []byte) (textenc.Encoding, string, []byte, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return 0, "", nil, err
	}
	field, rest, _ := textenc.Cut(enc, rest)
	desc, err := textenc.Decode(enc, field)
	return enc, desc, rest, err
}

func (t *frameTable) decodeUserText(major byte, data []byte) (decoded, error) {
	enc, desc, rest, err := decodeDescribed(data)
	if err != nil {
		return decoded{}, errors.Wrap(err, "user text frame")
	}
	var texts []string
	for _, part := range textenc.SplitAll(enc, rest) {
		s, err := textenc.Decode(enc, part)
		if err != nil {
			return decoded{}, errors.Wrap(err, "user text frame")
		}
		texts = append(texts, s)
	}
	if key := t.freeformKey(desc); key != types.KeyUserDefinedText {
		return decoded{Key: key, Values: textValues(splitValues(major, key, texts))}, nil
	}
	if len(texts) == 0 {
		texts = []string{""}
	}
	vs := make([]types.TagValue, 0, len(texts))
	for _, s := range texts {
		vs = append(vs, types.UserText{Description: desc, Value: s})
	}
	return decoded{Key: types.KeyUserDefinedText, Values: vs}, nil
}

// decodeLangText reads the COMM/USLT layout: encoding, language, description, text.
func decodeLangText(data []byte) (textenc.Encoding, string, string, string, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return 0, "", "", "", err
	}
	if len(rest) < 3 {
		return 0, "", "", "", errors.New("truncated language")
	}
	lang := strings.TrimRight(string(rest[:3]), "\x00 ")
	field, rest, _ := textenc.Cut(enc, rest[3:])
	desc, err := textenc.Decode(enc, field)
	if err != nil {
		return 0, "", "", "", err
	}
	text, err := textenc.Decode(enc, rest)
	return enc, lang, desc, text, err
}

func decodePicture(major byte, data []byte) (types.Picture, error) {
	enc, rest, err := readEncoding(data)
	if err != nil {
		return types.Picture{}, err
	}
	var mime string
	if major == 2 {
		if len(rest) < 3 {
			return types.Picture{}, errors.New("truncated image format")
		}
		mime = mimeForFormat(string(rest[:3]))
		rest = rest[3:]
	} else {
		field, after, ok := textenc.Cut(textenc.Latin1, rest)
		if !ok {
			return types.Picture{}, errors.New("unterminated MIME type")
		}
		mime = textenc.DecodeLatin1(field)
		rest = after
	}
	if len(rest) < 1 {
		return types.Picture{}, errors.New("truncated picture type")
	}
	ptype := types.PictureType(rest[0])
	field, img, ok := textenc.Cut(enc, rest[1:])
	if !ok {
		return types.Picture{}, errors.New("unterminated description")
	}
	desc, err := textenc.Decode(enc, field)
	if err != nil {
		return types.Picture{}, err
	}
	if mime == "" || !strings.Contains(mime, "/") {
		if sniffed := types.SniffImageMIME(img); sniffed != "" {
			mime = sniffed
		} else if mime != "" {
			mime = "image/" + strings.ToLower(mime)
		}
	}
	return types.Picture{MIME: mime, Data: img, Type: ptype, Description: desc}, nil
}

func mimeForFormat(f string) string {
	switch strings.ToUpper(f) {
	case "PNG":
		return "image/png"
	case "JPG":
		return "image/jpeg"
	case "GIF":
		return "image/gif"
	case "BMP":
		return "image/bmp"
	}
	return ""
}

func formatForMIME(mime string) string {
	switch mime {
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	case "image/bmp":
		return "BMP"
	}
	return "JPG"
}

// chooseEncoding picks Latin-1 when every string fits, UTF-16 otherwise.
func chooseEncoding(preferUTF16 bool, strs ...string) textenc.Encoding {
	if preferUTF16 {
		return textenc.UTF16
	}
	for _, s := range strs {
		if !textenc.IsLatin1(s) {
			return textenc.UTF16
		}
	}
	return textenc.Latin1
}

// payloadBuilder accumulates an encoded frame body.
type payloadBuilder struct {
	enc textenc.Encoding
	buf []byte
	err error
}

func newPayload(enc textenc.Encoding) *payloadBuilder {
	return &payloadBuilder{enc: enc, buf: []byte{byte(enc)}}
}

func (p *payloadBuilder) raw(b ...byte) *payloadBuilder {
	p.buf = append(p.buf, b...)
	return p
}

func (p *payloadBuilder) text(s string, terminate bool) *payloadBuilder {
	if p.err != nil {
		return p
	}
	b, err := textenc.Encode(p.enc, s)
	if err != nil {
		p.err = err
		return p
	}
	p.buf = append(p.buf, b...)
	if terminate {
		p.buf = append(p.buf, p.enc.Terminator()...)
	}
	return p
}

func (p *payloadBuilder) bytes() ([]byte, error) {
	return p.buf, p.err
}

func encodeText(enc textenc.Encoding, texts []string) ([]byte, error) {
	p := newPayload(enc)
	for i, s := range texts {
		p.text(s, i < len(texts)-1)
	}
	return p.bytes()
}

func encodeUserText(enc textenc.Encoding, desc string, texts []string) ([]byte, error) {
	p := newPayload(enc).text(desc, true)
	for i, s := range texts {
		p.text(s, i < len(texts)-1)
	}
	return p.bytes()
}

func encodeUserURL(enc textenc.Encoding, desc, url string) ([]byte, error) {
	p := newPayload(enc).text(desc, true)
	p.raw(textenc.EncodeLatin1(url)...)
	return p.bytes()
}

func encodeLangText(enc textenc.Encoding, lang, desc, text string) ([]byte, error) {
	l := []byte("eng")
	if len(lang) == 3 {
		l = []byte(lang)
	}
	return newPayload(enc).raw(l...).text(desc, true).text(text, false).bytes()
}

func encodePicture(major byte, enc textenc.Encoding, p types.Picture) ([]byte, error) {
	mime := p.MIME
	if mime == "" {
		mime = types.SniffImageMIME(p.Data)
	}
	b := newPayload(enc)
	if major == 2 {
		b.raw([]byte(formatForMIME(mime))...)
	} else {
		b.raw(textenc.EncodeLatin1(mime)...).raw(0)
	}
	b.raw(byte(p.Type.Or(types.PictureFrontCover))).text(p.Description, true).raw(p.Data...)
	return b.bytes()
}
