package vorbis

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/types"
)

// PictureField carries a base64 FLAC picture block in Ogg streams.
const PictureField = "METADATA_BLOCK_PICTURE"

// fieldNames overrides the default field name upper(key.String()).
var fieldNames = map[types.FrameKey]string{
	types.KeyTitle:           "TITLE",
	types.KeyArtist:          "ARTIST",
	types.KeyAlbum:           "ALBUM",
	types.KeyAlbumArtist:     "ALBUMARTIST",
	types.KeyYear:            "DATE",
	types.KeyReleaseDate:     "ORIGINALDATE",
	types.KeyTrackNumber:     "TRACKNUMBER",
	types.KeyTotalTracks:     "TRACKTOTAL",
	types.KeyDiscNumber:      "DISCNUMBER",
	types.KeyTotalDiscs:      "DISCTOTAL",
	types.KeyGenre:           "GENRE",
	types.KeyContentGroup:    "GROUPING",
	types.KeyComposer:        "COMPOSER",
	types.KeyLyricist:        "LYRICIST",
	types.KeyEncodedBy:       "ENCODEDBY",
	types.KeySoftwareEncoder: "ENCODER",
	types.KeyUnsyncedLyrics:  "LYRICS",
	types.KeyComments:        "COMMENT",
	types.KeyConductor:       "CONDUCTOR",
	types.KeyBeatsPerMinute:  "BPM",
	types.KeyLanguage:        "LANGUAGE",
	types.KeyLabel:           "LABEL",
	types.KeyISRC:            "ISRC",
	types.KeyUserDefinedURL:  "URL",
}

// aliases are accepted on read only.
var aliases = map[string]types.FrameKey{
	"ALBUM ARTIST":   types.KeyAlbumArtist,
	"YEAR":           types.KeyYear,
	"TRACK":          types.KeyTrackNumber,
	"TOTALTRACKS":    types.KeyTotalTracks,
	"TOTALDISCS":     types.KeyTotalDiscs,
	"ORGANIZATION":   types.KeyLabel,
	"UNSYNCEDLYRICS": types.KeyUnsyncedLyrics,
	"RELEASEDATE":    types.KeyReleaseDate,
}

// shadowed keys would reuse a field another key owns, so Vorbis
// comments have no slot for them.
var shadowed = map[types.FrameKey]bool{
	types.KeyGrouping:     true, // GROUPING belongs to ContentGroup
	types.KeyLyrics:       true, // LYRICS belongs to UnsyncedLyrics
	types.KeyOriginalDate: true, // ORIGINALDATE belongs to ReleaseDate
}

var keysByField = make(map[string]types.FrameKey)

func init() {
	for _, k := range types.AllFrameKeys() {
		if !Supports(k) || k == types.KeyAttachedPicture || k == types.KeyUserDefinedText {
			continue
		}
		keysByField[FieldName(k)] = k
	}
	for name, k := range aliases {
		keysByField[name] = k
	}
}

// Supports reports whether key has a Vorbis comment slot.
func Supports(key types.FrameKey) bool {
	return key.Valid() && !shadowed[key]
}

// FieldName returns the comment field name written for key.
func FieldName(key types.FrameKey) string {
	if key == types.KeyAttachedPicture {
		return PictureField
	}
	if name, ok := fieldNames[key]; ok {
		return name
	}
	return strings.ToUpper(key.String())
}

// KeyForField resolves a field name. Unmapped names return false and are
// read as UserDefinedText.
func KeyForField(name string) (types.FrameKey, bool) {
	k, ok := keysByField[strings.ToUpper(strings.TrimSpace(name))]
	return k, ok
}

func fieldKey(name string) types.FrameKey {
	if name == PictureField {
		return types.KeyAttachedPicture
	}
	if k, ok := KeyForField(name); ok {
		return k
	}
	return types.KeyUserDefinedText
}

// Tags converts the fields into canonical tags. Pictures are decoded
// from METADATA_BLOCK_PICTURE fields; undecodable ones are skipped.
func (c *Comments) Tags() types.Tags {
	tags := make(types.Tags)
	for _, f := range c.Fields {
		switch key := fieldKey(f.Name); key {
		case types.KeyAttachedPicture:
			if p, err := DecodePicture(f.Value); err == nil {
				tags.Add(key, p)
			}
		case types.KeyUserDefinedText:
			tags.Add(key, types.UserText{Description: f.Name, Value: f.Value})
		case types.KeyUserDefinedURL:
			tags.Add(key, types.UserURL{URL: f.Value})
		default:
			if f.Value != "" {
				tags.Add(key, types.Text(f.Value))
			}
		}
	}
	return tags
}

// Apply rewrites the fields for every targeted key: existing fields for
// the key are removed in place and the new values are appended in key
// order. Untargeted fields keep their position.
//
// With inlinePictures false, AttachedPicture values are not written; the
// caller stores them elsewhere (FLAC PICTURE blocks).
func (c *Comments) Apply(changes types.Tags, inlinePictures bool) error {
	kept := make([]Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if _, targeted := changes[fieldKey(f.Name)]; !targeted {
			kept = append(kept, f)
		}
	}

	for _, key := range (types.Changes{Tags: changes}).TargetKeys() {
		if !Supports(key) {
			continue
		}
		for _, v := range changes[key] {
			f, ok, err := encodeField(key, v, inlinePictures)
			if err != nil {
				return errors.Wrapf(err, "encode %s", key)
			}
			if ok {
				kept = append(kept, f)
			}
		}
	}
	c.Fields = kept
	return nil
}

func encodeField(key types.FrameKey, v types.TagValue, inlinePictures bool) (Field, bool, error) {
	switch key {
	case types.KeyAttachedPicture:
		p, ok := v.(types.Picture)
		if !ok || !inlinePictures {
			return Field{}, false, nil
		}
		s, err := EncodePicture(p)
		return Field{Name: PictureField, Value: s}, err == nil, err
	case types.KeyUserDefinedText:
		desc, value := "", types.TextOf(v)
		if ut, ok := v.(types.UserText); ok {
			desc = ut.Description
		}
		name := strings.ToUpper(strings.TrimSpace(desc))
		if !validFieldName(name) {
			return Field{}, false, errors.Errorf("invalid field name %q", desc)
		}
		return Field{Name: name, Value: value}, true, nil
	}
	return Field{Name: FieldName(key), Value: types.TextOf(v)}, true, nil
}

// validFieldName checks the Vorbis rule: printable ASCII 0x20-0x7D
// without '='.
func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 0x20 || c > 0x7D || c == '=' {
			return false
		}
	}
	return true
}
