package mp4

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/id3"
	"github.com/simonhull/tagengine/internal/types"
)

// Well-known data type indicators.
const (
	typeImplicit = 0
	typeUTF8     = 1
	typeJPEG     = 13
	typePNG      = 14
	typeInteger  = 21
	typeBMP      = 27
)

const (
	freeformAtom = "----"
	coverAtom    = "covr"
	trackAtom    = "trkn"
	discAtom     = "disk"
	genreAtom    = "gnre"

	// ItunesNamespace is the mean of freeform atoms written by iTunes.
	ItunesNamespace = "com.apple.iTunes"
)

type atomKind int

const (
	atomText atomKind = iota
	atomInt
	atomBool
)

// atom describes a native ilst item.
type atom struct {
	code  string
	kind  atomKind
	width int // integer payload size in bytes
}

// atoms maps keys to native ilst items. Keys missing here are stored as
// freeform atoms, except the pair keys handled by trkn and disk.
var atoms = map[types.FrameKey]atom{
	types.KeyTitle:           {code: "\xA9nam"},
	types.KeyArtist:          {code: "\xA9ART"},
	types.KeyAlbum:           {code: "\xA9alb"},
	types.KeyYear:            {code: "\xA9day"},
	types.KeyGenre:           {code: "\xA9gen"},
	types.KeyAlbumArtist:     {code: "aART"},
	types.KeyContentGroup:    {code: "\xA9grp"},
	types.KeyComposer:        {code: "\xA9wrt"},
	types.KeyEncodedBy:       {code: "\xA9enc"},
	types.KeySoftwareEncoder: {code: "\xA9too"},
	types.KeyUnsyncedLyrics:  {code: "\xA9lyr"},
	types.KeyComments:        {code: "\xA9cmt"},
	types.KeyCopyrightURL:    {code: "cprt"},
	types.KeyAlbumSort:       {code: "soal"},
	types.KeyAlbumArtistSort: {code: "soaa"},
	types.KeyArtistSort:      {code: "soar"},
	types.KeyTitleSort:       {code: "sonm"},
	types.KeyComposerSort:    {code: "soco"},
	types.KeyShow:            {code: "tvsh"},
	types.KeyShowSort:        {code: "sosn"},
	types.KeyWork:            {code: "\xA9wrk"},
	types.KeyMovement:        {code: "\xA9mvn"},
	types.KeyPodcastURL:      {code: "purl"},
	types.KeyMovementNumber:  {code: "\xA9mvi", kind: atomInt, width: 2},
	types.KeyMovementTotal:   {code: "\xA9mvc", kind: atomInt, width: 2},
	types.KeyBeatsPerMinute:  {code: "tmpo", kind: atomInt, width: 2},
	types.KeyMediaType:       {code: "stik", kind: atomInt, width: 1},
	types.KeyRating:          {code: "rtng", kind: atomInt, width: 1},
	types.KeyPlayCount:       {code: "pcnt", kind: atomInt, width: 4},
	types.KeyCompilation:     {code: "cpil", kind: atomBool, width: 1},
	types.KeyGapless:         {code: "pgap", kind: atomBool, width: 1},
	types.KeyPodcast:         {code: "pcst", kind: atomBool, width: 1},
}

var keysByAtom = make(map[string]types.FrameKey, len(atoms))

func init() {
	for k, a := range atoms {
		keysByAtom[a.code] = k
	}
}

// pairKeys are stored together in one trkn or disk item.
var pairKeys = map[string][2]types.FrameKey{
	trackAtom: {types.KeyTrackNumber, types.KeyTotalTracks},
	discAtom:  {types.KeyDiscNumber, types.KeyTotalDiscs},
}

// opaqueKeys hold binary ID3 structures with no meaningful MP4 slot.
var opaqueKeys = map[types.FrameKey]bool{
	types.KeyPrivate:                  true,
	types.KeyRelativeVolumeAdjustment: true,
	types.KeyEncryptionMethod:         true,
	types.KeyGroupIDRegistration:      true,
	types.KeyGeneralObject:            true,
	types.KeySynchronizedLyrics:       true,
	types.KeyTempoCodes:               true,
	types.KeyMusicCDIdentifier:        true,
	types.KeyEventTimingCodes:         true,
	types.KeyAudioSeekPointIndex:      true,
	types.KeyCommercialFrame:          true,
	types.KeyAudioEncryption:          true,
	types.KeySignatureFrame:           true,
}

// Supports reports whether key can be stored in an ilst.
func Supports(key types.FrameKey) bool {
	return key.Valid() && !opaqueKeys[key]
}

// hasNativeItem reports whether key is stored in an item other than
// "----". Freeform atoms named after such a key are user-defined text.
func hasNativeItem(key types.FrameKey) bool {
	if _, ok := atoms[key]; ok {
		return true
	}
	_, _, pair := pairAtom(key)
	return pair || key == types.KeyAttachedPicture || key == types.KeyUserDefinedText
}

// pairAtom returns the trkn/disk code for a pair key.
func pairAtom(key types.FrameKey) (string, int, bool) {
	for code, keys := range pairKeys {
		for i, k := range keys {
			if k == key {
				return code, i, true
			}
		}
	}
	return "", 0, false
}

// dataBox is one data child of an ilst item.
type dataBox struct {
	Type    uint32
	Payload []byte
}

// item is a decoded ilst entry.
type item struct {
	Code string
	Mean string // freeform only
	Name string // freeform only
	Data []dataBox
}

// parseItem decodes an ilst child. Unknown children of the item are ignored.
func parseItem(n *node) (*item, error) {
	it := &item{Code: n.Type}
	children, _, err := parseChildren(n.payload())
	if err != nil {
		return nil, errors.Wrapf(err, "parse item %q", n.Type)
	}
	for _, c := range children {
		p := c.payload()
		switch c.Type {
		case "mean", "name":
			if len(p) < 4 {
				return nil, errors.Errorf("truncated %q box in %q", c.Type, n.Type)
			}
			if c.Type == "mean" {
				it.Mean = string(p[4:])
			} else {
				it.Name = string(p[4:])
			}
		case "data":
			if len(p) < 8 {
				return nil, errors.Errorf("truncated data box in %q", n.Type)
			}
			it.Data = append(it.Data, dataBox{
				Type:    binary.BigEndian.Uint32(p[:4]) & 0x00FFFFFF,
				Payload: p[8:],
			})
		}
	}
	return it, nil
}

// ownMean reports whether a freeform item belongs to the iTunes
// namespace or to ns.
func (it *item) ownMean(ns string) bool {
	return it.Mean == ItunesNamespace || (ns != "" && it.Mean == ns)
}

// key resolves the canonical key of a native or owned freeform item.
func (it *item) key(ns string) (types.FrameKey, bool) {
	switch it.Code {
	case freeformAtom:
		if !it.ownMean(ns) {
			return 0, false
		}
		if k, ok := types.KeyForFreeform(it.Name); ok && !hasNativeItem(k) {
			return k, true
		}
		return types.KeyUserDefinedText, true
	case coverAtom:
		return types.KeyAttachedPicture, true
	case genreAtom:
		return types.KeyGenre, true
	}
	k, ok := keysByAtom[it.Code]
	return k, ok
}

// targeted reports whether a change set replaces this item.
func (it *item) targeted(changes types.Tags, ns string) bool {
	if keys, ok := pairKeys[it.Code]; ok {
		_, a := changes[keys[0]]
		_, b := changes[keys[1]]
		return a || b
	}
	k, ok := it.key(ns)
	if !ok {
		return false
	}
	_, t := changes[k]
	return t
}

// decode adds the item's values to tags. Foreign freeform atoms are
// returned separately.
func (it *item) decode(tags types.Tags, ns string) []types.FreeformTag {
	switch it.Code {
	case freeformAtom:
		var ff []types.FreeformTag
		for _, d := range it.Data {
			v := strings.TrimRight(string(d.Payload), "\x00")
			if !it.ownMean(ns) {
				ff = append(ff, types.FreeformTag{Mean: it.Mean, Name: it.Name, Value: v})
				continue
			}
			switch k, _ := it.key(ns); k {
			case types.KeyUserDefinedText:
				tags.Add(k, types.UserText{Description: it.Name, Value: v})
			case types.KeyUserDefinedURL:
				tags.Add(k, types.UserURL{URL: v})
			default:
				tags.AddText(k, v)
			}
		}
		return ff
	case coverAtom:
		for _, d := range it.Data {
			if len(d.Payload) == 0 {
				continue
			}
			tags.Add(types.KeyAttachedPicture, types.Picture{
				MIME: coverMIME(d),
				Data: d.Payload,
				Type: types.PictureTypeNone,
			})
		}
	case trackAtom, discAtom:
		keys := pairKeys[it.Code]
		for _, d := range it.Data {
			if len(d.Payload) < 6 {
				continue
			}
			if n := binary.BigEndian.Uint16(d.Payload[2:4]); n > 0 {
				tags.AddText(keys[0], strconv.Itoa(int(n)))
			}
			if n := binary.BigEndian.Uint16(d.Payload[4:6]); n > 0 {
				tags.AddText(keys[1], strconv.Itoa(int(n)))
			}
		}
	case genreAtom:
		for _, d := range it.Data {
			if len(d.Payload) < 2 {
				continue
			}
			// gnre stores the ID3v1 code plus one.
			if code := binary.BigEndian.Uint16(d.Payload); code > 0 && code <= 256 {
				tags.AddText(types.KeyGenre, id3.GenreName(byte(code-1)))
			}
		}
	default:
		k, ok := keysByAtom[it.Code]
		if !ok {
			return nil
		}
		for _, d := range it.Data {
			if d.Type == typeUTF8 {
				tags.AddText(k, strings.TrimRight(string(d.Payload), "\x00"))
				continue
			}
			if n, ok := decodeInt(d.Payload); ok {
				tags.AddText(k, strconv.FormatUint(n, 10))
			}
		}
	}
	return nil
}

func decodeInt(b []byte) (uint64, bool) {
	switch len(b) {
	case 1:
		return uint64(b[0]), true
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), true
	case 3:
		return uint64(b[0])<<16 | uint64(b[1])<<8 | uint64(b[2]), true
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), true
	case 8:
		return binary.BigEndian.Uint64(b), true
	}
	return 0, false
}

func coverMIME(d dataBox) string {
	switch d.Type {
	case typeJPEG:
		return "image/jpeg"
	case typePNG:
		return "image/png"
	case typeBMP:
		return "image/bmp"
	}
	return types.SniffImageMIME(d.Payload)
}

func coverType(p types.Picture) uint32 {
	mime := p.MIME
	if mime == "" {
		mime = types.SniffImageMIME(p.Data)
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return typeJPEG
	case "image/png":
		return typePNG
	case "image/bmp":
		return typeBMP
	}
	return typeImplicit
}

// dataNode builds a data box: type indicator, locale, payload.
func dataNode(typ uint32, payload []byte) *node {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], typ)
	return leaf("data", hdr[:], payload)
}

// fullBox builds a box whose payload starts with zero version/flags.
func fullBox(typ string, payload []byte) *node {
	return leaf(typ, []byte{0, 0, 0, 0}, payload)
}

func itemNode(code string, data ...*node) *node {
	return &node{Type: code, Children: data}
}

func freeformNode(mean, name string, data ...*node) *node {
	children := append([]*node{fullBox("mean", []byte(mean)), fullBox("name", []byte(name))}, data...)
	return itemNode(freeformAtom, children...)
}

// encodeKey builds the ilst items for a targeted key. Freeform atoms
// for keys without a native item use namespace as their mean.
func encodeKey(key types.FrameKey, values []types.TagValue, namespace string) ([]*node, error) {
	if len(values) == 0 {
		return nil, nil
	}
	switch key {
	case types.KeyAttachedPicture:
		var data []*node
		for _, v := range values {
			if p, ok := v.(types.Picture); ok {
				data = append(data, dataNode(coverType(p), p.Data))
			}
		}
		if len(data) == 0 {
			return nil, nil
		}
		return []*node{itemNode(coverAtom, data...)}, nil
	case types.KeyUserDefinedText:
		var out []*node
		for _, v := range values {
			name := key.FreeformName()
			if ut, ok := v.(types.UserText); ok && ut.Description != "" {
				name = ut.Description
			}
			out = append(out, freeformNode(ItunesNamespace, name, dataNode(typeUTF8, []byte(types.TextOf(v)))))
		}
		return out, nil
	}

	a, native := atoms[key]
	if !native {
		data := make([]*node, 0, len(values))
		for _, v := range values {
			data = append(data, dataNode(typeUTF8, []byte(types.TextOf(v))))
		}
		mean := namespace
		if mean == "" {
			mean = ItunesNamespace
		}
		return []*node{freeformNode(mean, key.FreeformName(), data...)}, nil
	}

	data := make([]*node, 0, len(values))
	for _, v := range values {
		s := strings.TrimSpace(types.TextOf(v))
		switch a.kind {
		case atomText:
			data = append(data, dataNode(typeUTF8, []byte(types.TextOf(v))))
		case atomBool:
			b, err := parseBool(s)
			if err != nil {
				return nil, &types.InvalidValueError{Key: key, Reason: err.Error()}
			}
			data = append(data, dataNode(typeInteger, []byte{b}))
		case atomInt:
			n, err := strconv.ParseUint(s, 10, a.width*8)
			if err != nil {
				return nil, &types.InvalidValueError{Key: key, Reason: "not an integer: " + s}
			}
			payload := make([]byte, 8)
			binary.BigEndian.PutUint64(payload, n)
			data = append(data, dataNode(typeInteger, payload[8-a.width:]))
		}
	}
	return []*node{itemNode(a.code, data...)}, nil
}

// encodePair builds a trkn or disk item from the merged number and total.
func encodePair(code string, tags types.Tags) (*node, error) {
	keys := pairKeys[code]
	var nums [2]uint16
	for i, k := range keys {
		s := strings.TrimSpace(tags.First(k))
		if s == "" {
			continue
		}
		// Accept "3/12" in the number slot.
		if i == 0 {
			if num, total, ok := strings.Cut(s, "/"); ok {
				s = num
				if n, err := strconv.ParseUint(strings.TrimSpace(total), 10, 16); err == nil && nums[1] == 0 {
					nums[1] = uint16(n)
				}
			}
		}
		n, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return nil, &types.InvalidValueError{Key: k, Reason: "not a number: " + s}
		}
		nums[i] = uint16(n)
	}
	if nums == [2]uint16{} {
		return nil, nil
	}
	size := 8
	if code == discAtom {
		size = 6
	}
	payload := make([]byte, size)
	binary.BigEndian.PutUint16(payload[2:], nums[0])
	binary.BigEndian.PutUint16(payload[4:], nums[1])
	return itemNode(code, dataNode(typeImplicit, payload)), nil
}

func parseBool(s string) (byte, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return 1, nil
	case "0", "false", "no", "":
		return 0, nil
	}
	return 0, errors.Errorf("not a boolean: %q", s)
}
