package tagengine

import (
	"io"

	"github.com/simonhull/tagengine/internal/detect"
	"github.com/simonhull/tagengine/internal/types"
)

// Format identifies a tag container.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown = types.FormatUnknown
	FormatID3v22  = types.FormatID3v22
	FormatID3v23  = types.FormatID3v23
	FormatID3v24  = types.FormatID3v24
	FormatID3v11  = types.FormatID3v11
	FormatID3v10  = types.FormatID3v10
	FormatItunes  = types.FormatItunes
	FormatFLAC    = types.FormatFLAC
	FormatOgg     = types.FormatOgg
	FormatRIFF    = types.FormatRIFF
)

// DetectFormat returns the primary format of the file behind r, the one
// whose codec reads and writes it.
func DetectFormat(r io.ReaderAt, size int64, path string) Format {
	return detect.Format(r, size, path)
}

// DetectAll returns every container signature in the file, primary first.
func DetectAll(r io.ReaderAt, size int64, path string) []Format {
	return detect.All(r, size, path)
}
