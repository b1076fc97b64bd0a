// Package detect identifies which tag container a file carries.
package detect

import (
	"bytes"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/id3"
	"github.com/simonhull/tagengine/internal/types"
)

// brands are the ftyp brands accepted as iTunes-tagged MP4.
var brands = [][]byte{
	[]byte("M4A "), []byte("M4B "), []byte("M4V "),
	[]byte("mp41"), []byte("mp42"),
	[]byte("isom"), []byte("iso2"),
	[]byte("qt  "),
}

// extensionFormats override content sniffing for unambiguous containers.
var extensionFormats = map[string]types.Format{
	".m4a":  types.FormatItunes,
	".m4b":  types.FormatItunes,
	".mp4":  types.FormatItunes,
	".ogg":  types.FormatOgg,
	".oga":  types.FormatOgg,
	".opus": types.FormatOgg,
	".wav":  types.FormatRIFF,
	".aiff": types.FormatRIFF,
	".aif":  types.FormatRIFF,
}

var mpegExtensions = []string{".mp3", ".mp2", ".mp1"}

// Format returns the primary format of a file, the one whose codec reads
// and writes it.
//
// Rules apply in order: extension override, leading magic, ID3v2 header,
// ID3v1 tail, MPEG extension fallback. Anything else is FormatUnknown.
func Format(r io.ReaderAt, size int64, path string) types.Format {
	ext := strings.ToLower(filepath.Ext(path))
	sr := binary.NewSafeReader(r, size, path)

	if f, ok := extensionFormats[ext]; ok {
		return f
	}
	if ext == ".flac" && hasMagic(sr, "fLaC") {
		return types.FormatFLAC
	}
	if f := magic(sr); f != types.FormatUnknown {
		return f
	}
	if hasMagic(sr, "ID3") {
		locs, err := id3.ScanTags(sr)
		if err != nil {
			return types.FormatUnknown
		}
		if loc, ok := id3.Primary(locs); ok {
			return loc.Format
		}
		return types.FormatUnknown
	}
	if f, ok := id3.HasV1(sr); ok {
		return f
	}
	if slices.Contains(mpegExtensions, ext) {
		return types.FormatID3v23
	}
	return types.FormatUnknown
}

// All returns every container signature in the file, primary first and
// without duplicates. ID3v1 and ID3v2 often coexist.
func All(r io.ReaderAt, size int64, path string) []types.Format {
	sr := binary.NewSafeReader(r, size, path)
	found := []types.Format{Format(r, size, path)}

	if locs, err := id3.ScanTags(sr); err == nil {
		for _, l := range locs {
			found = append(found, l.Format)
		}
	}
	if f, ok := id3.HasV1(sr); ok {
		found = append(found, f)
	}
	if f := magic(sr); f != types.FormatUnknown {
		found = append(found, f)
	}

	out := make([]types.Format, 0, len(found))
	for _, f := range found {
		if f != types.FormatUnknown && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// magic sniffs the leading bytes for a non-ID3 container.
func magic(sr *binary.SafeReader) types.Format {
	switch {
	case hasMagic(sr, "fLaC"):
		return types.FormatFLAC
	case hasMagic(sr, "OggS"):
		return types.FormatOgg
	case hasMagic(sr, "RIFF"), hasMagic(sr, "FORM"):
		return types.FormatRIFF
	case isMP4(sr):
		return types.FormatItunes
	}
	return types.FormatUnknown
}

func hasMagic(sr *binary.SafeReader, magic string) bool {
	b, err := sr.Bytes(0, len(magic), "magic")
	return err == nil && string(b) == magic
}

// isMP4 checks for a leading ftyp box whose major or a compatible brand
// is whitelisted.
func isMP4(sr *binary.SafeReader) bool {
	size, err := binary.Read[uint32](sr, 0, "ftyp size")
	if err != nil || size < 16 || int64(size) > sr.Size() {
		return false
	}
	box, err := sr.Bytes(0, int(size), "ftyp box")
	if err != nil || string(box[4:8]) != "ftyp" {
		return false
	}
	if knownBrand(box[8:12]) {
		return true
	}
	// Skip minor_version.
	for compat := box[16:]; len(compat) >= 4; compat = compat[4:] {
		if knownBrand(compat[:4]) {
			return true
		}
	}
	return false
}

func knownBrand(b []byte) bool {
	return slices.ContainsFunc(brands, func(brand []byte) bool { return bytes.Equal(brand, b) })
}
