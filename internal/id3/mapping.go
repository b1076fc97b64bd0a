package id3

import (
	"maps"

	"github.com/simonhull/tagengine/internal/types"
)

// frameIDs names the structured frames whose payload is not a plain text
// or URL field.
type frameIDs struct {
	userText string
	userURL  string
	comment  string
	lyrics   string
	picture  string
}

var (
	v22IDs = frameIDs{userText: "TXX", userURL: "WXX", comment: "COM", lyrics: "ULT", picture: "PIC"}
	v23IDs = frameIDs{userText: "TXXX", userURL: "WXXX", comment: "COMM", lyrics: "USLT", picture: "APIC"}
)

// frameTable maps keys to the native text/URL frame of one ID3v2 version.
type frameTable struct {
	ids    frameIDs
	byKey  map[types.FrameKey]string
	byID   map[string]types.FrameKey
	idSize int
}

var v22Native = map[types.FrameKey]string{
	types.KeyTitle:            "TT2",
	types.KeyArtist:           "TP1",
	types.KeyAlbum:            "TAL",
	types.KeyYear:             "TYE",
	types.KeyTrackNumber:      "TRK",
	types.KeyGenre:            "TCO",
	types.KeyAlbumArtist:      "TP2",
	types.KeyConductor:        "TP3",
	types.KeyRemixer:          "TP4",
	types.KeyContentGroup:     "TT1",
	types.KeySubtitle:         "TT3",
	types.KeyComposer:         "TCM",
	types.KeyLyricist:         "TXT",
	types.KeyEncodedBy:        "TEN",
	types.KeySoftwareEncoder:  "TSS",
	types.KeyLength:           "TLE",
	types.KeyBeatsPerMinute:   "TBP",
	types.KeyLanguage:         "TLA",
	types.KeyFileType:         "TFT",
	types.KeyTime:             "TIM",
	types.KeyRecordingDate:    "TRD",
	types.KeyReleaseDate:      "TOR",
	types.KeyMediaType:        "TMT",
	types.KeyLabel:            "TPB",
	types.KeyISRC:             "TRC",
	types.KeyDiscNumber:       "TPA",
	types.KeyInitialKey:       "TKE",
	types.KeyOriginalAlbum:    "TOT",
	types.KeyOriginalArtist:   "TOA",
	types.KeyOriginalFilename: "TOF",
	types.KeyCompilation:      "TCP",
	types.KeyAlbumSort:        "TSA",
	types.KeyArtistSort:       "TSP",
	types.KeyTitleSort:        "TST",
	types.KeyAlbumArtistSort:  "TS2",
	types.KeyComposerSort:     "TSC",
	types.KeyCommercialURL:    "WCM",
	types.KeyCopyrightURL:     "WCP",
	types.KeyAudioFileURL:     "WAF",
	types.KeyArtistURL:        "WAR",
}

var v23Native = map[types.FrameKey]string{
	types.KeyTitle:            "TIT2",
	types.KeyArtist:           "TPE1",
	types.KeyAlbum:            "TALB",
	types.KeyYear:             "TYER",
	types.KeyTrackNumber:      "TRCK",
	types.KeyGenre:            "TCON",
	types.KeyAlbumArtist:      "TPE2",
	types.KeyConductor:        "TPE3",
	types.KeyRemixer:          "TPE4",
	types.KeyContentGroup:     "TIT1",
	types.KeySubtitle:         "TIT3",
	types.KeyComposer:         "TCOM",
	types.KeyLyricist:         "TEXT",
	types.KeyEncodedBy:        "TENC",
	types.KeySoftwareEncoder:  "TSSE",
	types.KeyLength:           "TLEN",
	types.KeyBeatsPerMinute:   "TBPM",
	types.KeyLanguage:         "TLAN",
	types.KeyFileType:         "TFLT",
	types.KeyTime:             "TIME",
	types.KeyRecordingDate:    "TRDA",
	types.KeyReleaseDate:      "TORY",
	types.KeyMediaType:        "TMED",
	types.KeyLabel:            "TPUB",
	types.KeyISRC:             "TSRC",
	types.KeyDiscNumber:       "TPOS",
	types.KeyInitialKey:       "TKEY",
	types.KeyOriginalAlbum:    "TOAL",
	types.KeyOriginalArtist:   "TOPE",
	types.KeyOriginalFilename: "TOFN",
	types.KeyCompilation:      "TCMP",
	types.KeyAlbumSort:        "TSOA",
	types.KeyArtistSort:       "TSOP",
	types.KeyTitleSort:        "TSOT",
	types.KeyAlbumArtistSort:  "TSO2",
	types.KeyComposerSort:     "TSOC",
	types.KeyGrouping:         "GRP1",
	types.KeyMovement:         "MVNM",
	types.KeyMovementNumber:   "MVIN",
	types.KeyCommercialURL:    "WCOM",
	types.KeyCopyrightURL:     "WCOP",
	types.KeyAudioFileURL:     "WOAF",
	types.KeyArtistURL:        "WOAR",
	types.KeyRadioStationURL:  "WORS",
	types.KeyPaymentURL:       "WPAY",
}

// v24Changes are applied on top of v23Native. Empty values remove a mapping.
var v24Changes = map[types.FrameKey]string{
	types.KeyYear:          "TDRC",
	types.KeyReleaseDate:   "TDOR",
	types.KeyTime:          "",
	types.KeyRecordingDate: "",
	types.KeyMood:          "TMOO",
	types.KeyDiscSubtitle:  "TSST",
}

// readAliases resolve frames another version wrote into a file of this version.
var (
	v23Aliases = map[string]types.FrameKey{"TDRC": types.KeyYear, "TDOR": types.KeyReleaseDate}
	v24Aliases = map[string]types.FrameKey{"TYER": types.KeyYear, "TORY": types.KeyReleaseDate}
)

var tables = map[byte]*frameTable{
	2: newFrameTable(v22IDs, v22Native, nil, 3),
	3: newFrameTable(v23IDs, v23Native, v23Aliases, 4),
	4: newFrameTable(v23IDs, v24Native(), v24Aliases, 4),
}

func v24Native() map[types.FrameKey]string {
	m := maps.Clone(v23Native)
	for k, id := range v24Changes {
		if id == "" {
			delete(m, k)
			continue
		}
		m[k] = id
	}
	return m
}

func newFrameTable(ids frameIDs, native map[types.FrameKey]string, aliases map[string]types.FrameKey, idSize int) *frameTable {
	t := &frameTable{
		ids:    ids,
		byKey:  native,
		byID:   make(map[string]types.FrameKey, len(native)+len(aliases)),
		idSize: idSize,
	}
	for k, id := range native {
		t.byID[id] = k
	}
	for id, k := range aliases {
		t.byID[id] = k
	}
	return t
}

// nativeID returns the native text or URL frame for key, if the version has one.
func (t *frameTable) nativeID(key types.FrameKey) (string, bool) {
	id, ok := t.byKey[key]
	return id, ok
}

// hasFrame reports whether key is stored in a frame of its own rather
// than in TXXX.
func (t *frameTable) hasFrame(key types.FrameKey) bool {
	switch key {
	case types.KeyComments, types.KeyUnsyncedLyrics, types.KeyAttachedPicture,
		types.KeyUserDefinedText, types.KeyUserDefinedURL:
		return true
	}
	_, ok := t.byKey[key]
	return ok
}

// freeformKey resolves a TXXX description. Only keys this version has no
// frame for are read back from TXXX; any other description, "TITLE"
// included, stays user-defined text.
func (t *frameTable) freeformKey(desc string) types.FrameKey {
	if key, ok := types.KeyForFreeform(desc); ok && !t.hasFrame(key) {
		return key
	}
	return types.KeyUserDefinedText
}

// isURLFrame reports whether id is a fixed URL link frame (no encoding byte).
func isURLFrame(id string) bool {
	return id[0] == 'W' && id != "WXXX" && id != "WXX"
}

// isTextFrame reports whether id is a plain text information frame.
func isTextFrame(id string) bool {
	return id[0] == 'T' && id != "TXXX" && id != "TXX"
}
