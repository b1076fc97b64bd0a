package types

import "bytes"

// PictureType categorizes the purpose/content of an embedded picture.
//
// Values follow the ID3v2 APIC picture types, which FLAC reuses.
// See: https://id3.org/id3v2.4.0-frames (APIC frame)
type PictureType uint8

const (
	PictureOther             PictureType = iota // Other
	PictureIcon                                 // File icon (32x32 PNG)
	PictureOtherIcon                            // Other file icon
	PictureFrontCover                           // Front cover
	PictureBackCover                            // Back cover
	PictureLeaflet                              // Leaflet page
	PictureMedia                                // Media (CD/vinyl label)
	PictureLeadArtist                           // Lead artist/performer/soloist
	PictureArtist                               // Artist/performer
	PictureConductor                            // Conductor
	PictureBand                                 // Band/orchestra
	PictureComposer                             // Composer
	PictureLyricist                             // Lyricist/text writer
	PictureRecordingLocation                    // Recording location
	PictureDuringRecording                      // During recording
	PictureDuringPerformance                    // During performance
	PictureVideoCapture                         // Movie/video screen capture
	PictureBrightFish                           // A bright colored fish
	PictureIllustration                         // Illustration
	PictureBandLogotype                         // Band/artist logotype
	PicturePublisherLogotype                    // Publisher/studio logotype
)

// PictureTypeNone marks a picture whose container does not record a type (MP4 covr).
const PictureTypeNone PictureType = 0xFF

var pictureTypeNames = [...]string{
	"Other", "File icon", "Other file icon", "Front cover", "Back cover",
	"Leaflet page", "Media", "Lead artist", "Artist", "Conductor", "Band",
	"Composer", "Lyricist", "Recording location", "During recording",
	"During performance", "Video capture", "A bright colored fish",
	"Illustration", "Band logotype", "Publisher logotype",
}

func (t PictureType) String() string {
	if int(t) < len(pictureTypeNames) {
		return pictureTypeNames[t]
	}
	if t == PictureTypeNone {
		return "Picture"
	}
	return "Unknown"
}

// Or returns t, or def when t is PictureTypeNone.
func (t PictureType) Or(def PictureType) PictureType {
	if t == PictureTypeNone {
		return def
	}
	return t
}

// SniffImageMIME infers an image MIME type from magic bytes.
// Returns "" when the format is not recognized.
func SniffImageMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return "image/png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "image/bmp"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	default:
		return ""
	}
}
