// Package registry maps a detected format to the codec that handles it.
package registry

import (
	"io"

	"github.com/simonhull/tagengine/internal/flac"
	"github.com/simonhull/tagengine/internal/id3"
	"github.com/simonhull/tagengine/internal/mp4"
	"github.com/simonhull/tagengine/internal/ogg"
	"github.com/simonhull/tagengine/internal/types"
)

// Codec is the interface every family codec implements.
type Codec interface {
	// Supports reports whether the family has a slot for key.
	Supports(key types.FrameKey) bool

	// Read decodes the tags of the file behind r.
	Read(r io.ReaderAt, size int64, path string) (*types.File, error)

	// Write streams a copy of the file with changes applied to w.
	// Untargeted keys and audio data are carried over.
	Write(w io.Writer, r io.ReaderAt, size int64, path string, changes types.Tags) error
}

// Options tune the codecs handed out by a Registry.
type Options struct {
	ID3Padding     int
	ID3PreferUTF16 bool
	VorbisVendor   string
	MP4Namespace   string
}

// Registry hands out configured codecs.
type Registry struct {
	opts Options
}

// New returns a registry whose codecs use opts.
func New(opts Options) *Registry {
	return &Registry{opts: opts}
}

// Codec returns the codec for format. FormatUnknown and FormatRIFF are
// claimed by none.
func (r *Registry) Codec(format types.Format) (Codec, bool) {
	switch format {
	case types.FormatID3v10, types.FormatID3v11:
		return id3.V1Codec{}, true
	case types.FormatID3v22, types.FormatID3v23, types.FormatID3v24:
		return id3.V2Codec{
			Major:       format.ID3v2Major(),
			Padding:     r.opts.ID3Padding,
			PreferUTF16: r.opts.ID3PreferUTF16,
		}, true
	case types.FormatItunes:
		return mp4.Codec{Namespace: r.opts.MP4Namespace}, true
	case types.FormatFLAC:
		return flac.Codec{Vendor: r.opts.VorbisVendor}, true
	case types.FormatOgg:
		return ogg.Codec{}, true
	default:
		return nil, false
	}
}
