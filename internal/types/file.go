// Package types provides the canonical tag model shared by every codec.
//
// This package defines FrameKey, the TagValue union, Tags, File, Changes
// and the Format enum, plus the error kinds the backend surfaces.
package types

import "github.com/google/uuid"

// File is the result of reading one path.
//
// A File is a value: it is never updated in place after a write. Read the
// path again to observe the new state.
type File struct {
	ID   uuid.UUID
	Path string
	Tags Tags

	// Format is the primary container, the one whose codec produced Tags.
	Format Format

	// TagFormats lists every container signature found, primary first.
	TagFormats []Format

	// Freeforms holds namespaced tags with no canonical key mapping.
	Freeforms []FreeformTag
}

// FreeformTag is a namespaced key/value pair with no FrameKey mapping,
// such as an MP4 "----" atom from a foreign namespace.
type FreeformTag struct {
	Mean  string
	Name  string
	Value string
}

// HasFormat reports whether f was found in the file.
func (f *File) HasFormat(format Format) bool {
	for _, tf := range f.TagFormats {
		if tf == format {
			return true
		}
	}
	return false
}
