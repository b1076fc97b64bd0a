package registry

import (
	"testing"

	"github.com/simonhull/tagengine/internal/flac"
	"github.com/simonhull/tagengine/internal/id3"
	"github.com/simonhull/tagengine/internal/mp4"
	"github.com/simonhull/tagengine/internal/ogg"
	"github.com/simonhull/tagengine/internal/types"
)

func TestCodec(t *testing.T) {
	r := New(Options{ID3Padding: 512, VorbisVendor: "vendor", MP4Namespace: "org.example"})

	tests := []struct {
		format types.Format
		check  func(Codec) bool
	}{
		{types.FormatID3v10, func(c Codec) bool { _, ok := c.(id3.V1Codec); return ok }},
		{types.FormatID3v11, func(c Codec) bool { _, ok := c.(id3.V1Codec); return ok }},
		{types.FormatID3v22, func(c Codec) bool { v, ok := c.(id3.V2Codec); return ok && v.Major == 2 && v.Padding == 512 }},
		{types.FormatID3v23, func(c Codec) bool { v, ok := c.(id3.V2Codec); return ok && v.Major == 3 }},
		{types.FormatID3v24, func(c Codec) bool { v, ok := c.(id3.V2Codec); return ok && v.Major == 4 }},
		{types.FormatItunes, func(c Codec) bool { v, ok := c.(mp4.Codec); return ok && v.Namespace == "org.example" }},
		{types.FormatFLAC, func(c Codec) bool { v, ok := c.(flac.Codec); return ok && v.Vendor == "vendor" }},
		{types.FormatOgg, func(c Codec) bool { _, ok := c.(ogg.Codec); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			c, ok := r.Codec(tt.format)
			if !ok {
				t.Fatalf("Codec(%s) not found", tt.format)
			}
			if !tt.check(c) {
				t.Errorf("Codec(%s) = %#v", tt.format, c)
			}
		})
	}
}

func TestCodecUnclaimed(t *testing.T) {
	r := New(Options{})
	for _, f := range []types.Format{types.FormatUnknown, types.FormatRIFF, types.Format(99)} {
		if c, ok := r.Codec(f); ok {
			t.Errorf("Codec(%s) = %#v, want none", f, c)
		}
	}
}

func TestSupportsByFamily(t *testing.T) {
	r := New(Options{})
	v1, _ := r.Codec(types.FormatID3v11)
	v2, _ := r.Codec(types.FormatID3v24)
	vc, _ := r.Codec(types.FormatOgg)

	if v1.Supports(types.KeyAlbumArtist) {
		t.Error("ID3v1 should not support albumArtist")
	}
	if !v2.Supports(types.KeyAlbumArtist) {
		t.Error("ID3v2 should support albumArtist")
	}
	if vc.Supports(types.KeyGrouping) {
		t.Error("Vorbis comments have no separate grouping field")
	}
}
