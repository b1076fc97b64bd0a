package types

import "strings"

// Format identifies a tag container.
type Format int

const (
	// FormatUnknown is claimed by no codec.
	FormatUnknown Format = iota // Unknown
	// FormatID3v22 is an ID3v2.2 header (3-char frame ids).
	FormatID3v22 // id3v2.2
	// FormatID3v23 is an ID3v2.3 header.
	FormatID3v23 // id3v2.3
	// FormatID3v24 is an ID3v2.4 header (synchsafe frame sizes).
	FormatID3v24 // id3v2.4
	// FormatID3v11 is a 128-byte ID3v1 tail carrying a track number.
	FormatID3v11 // id3v1.1
	// FormatID3v10 is a 128-byte ID3v1 tail without a track number.
	FormatID3v10 // id3v1.0
	// FormatItunes is an MP4 container with iTunes ilst metadata.
	FormatItunes // Itunes
	// FormatFLAC is a native FLAC stream.
	FormatFLAC // FLAC
	// FormatOgg is an Ogg bitstream carrying Vorbis or Opus.
	FormatOgg // Ogg
	// FormatRIFF is a RIFF/AIFF container, detected but not tagged.
	FormatRIFF // RIFF
)

var formatNames = [...]string{
	FormatUnknown: "Unknown",
	FormatID3v22:  "id3v2.2",
	FormatID3v23:  "id3v2.3",
	FormatID3v24:  "id3v2.4",
	FormatID3v11:  "id3v1.1",
	FormatID3v10:  "id3v1.0",
	FormatItunes:  "Itunes",
	FormatFLAC:    "FLAC",
	FormatOgg:     "Ogg",
	FormatRIFF:    "RIFF",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "Unknown"
}

// ParseFormat resolves a display name such as "id3v2.4" or "FLAC".
func ParseFormat(name string) (Format, bool) {
	for i, n := range formatNames {
		if strings.EqualFold(n, name) {
			return Format(i), true
		}
	}
	return FormatUnknown, false
}

// IsID3v2 reports whether f is one of the ID3v2 versions.
func (f Format) IsID3v2() bool {
	return f == FormatID3v22 || f == FormatID3v23 || f == FormatID3v24
}

// IsID3v1 reports whether f is an ID3v1 tail.
func (f Format) IsID3v1() bool {
	return f == FormatID3v10 || f == FormatID3v11
}

// ID3v2Major returns the ID3v2 major version byte (2, 3 or 4), or 0.
func (f Format) ID3v2Major() byte {
	switch f {
	case FormatID3v22:
		return 2
	case FormatID3v23:
		return 3
	case FormatID3v24:
		return 4
	default:
		return 0
	}
}

// ID3v2Format maps an ID3v2 major version byte to its Format.
func ID3v2Format(major byte) Format {
	switch major {
	case 2:
		return FormatID3v22
	case 3:
		return FormatID3v23
	case 4:
		return FormatID3v24
	default:
		return FormatUnknown
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatID3v22, FormatID3v23, FormatID3v24, FormatID3v10, FormatID3v11:
		return []string{".mp3", ".mp2", ".mp1"}
	case FormatItunes:
		return []string{".m4a", ".mp4", ".m4b", ".m4p"}
	case FormatFLAC:
		return []string{".flac"}
	case FormatOgg:
		return []string{".ogg", ".opus", ".oga"}
	case FormatRIFF:
		return []string{".wav", ".aiff", ".aif"}
	default:
		return nil
	}
}
