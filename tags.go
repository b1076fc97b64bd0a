package tagengine

import (
	"github.com/simonhull/tagengine/internal/types"
)

// Tags maps each FrameKey to its ordered sequence of values.
type Tags = types.Tags

// TagValue is one decoded value: Text, Picture, UserText, UserURL or Comment.
type TagValue = types.TagValue

// Value shapes.
type (
	Text     = types.Text
	Picture  = types.Picture
	UserText = types.UserText
	UserURL  = types.UserURL
	Comment  = types.Comment
)

// File is the result of reading one path.
type File = types.File

// FreeformTag is a namespaced tag with no FrameKey mapping.
type FreeformTag = types.FreeformTag

// Changes is a write request.
type Changes = types.Changes

// WriteResult is the outcome for one path of a Changes request.
type WriteResult = types.WriteResult

// TagDiff records one key whose values changed.
type TagDiff = types.TagDiff

// WriteStatus is the outcome of writing one path.
type WriteStatus = types.WriteStatus

// Write statuses.
const (
	StatusOK          = types.StatusOK
	StatusFailed      = types.StatusFailed
	StatusUnsupported = types.StatusUnsupported
	StatusDryRun      = types.StatusDryRun
)

// TextOf returns the textual payload of v.
func TextOf(v TagValue) string {
	return types.TextOf(v)
}
