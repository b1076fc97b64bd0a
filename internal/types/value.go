package types

import (
	"bytes"
	"fmt"
	"slices"
)

// TagValue is a decoded value for a FrameKey.
//
// The set of implementations is closed: Text, Picture, UserText, UserURL
// and Comment.
type TagValue interface {
	fmt.Stringer
	tagValue()
}

// Text is a plain text value.
type Text string

// Picture is an embedded image.
type Picture struct {
	MIME        string
	Data        []byte
	Type        PictureType // PictureTypeNone when the container records none
	Description string
}

// UserText is a named free-form text pair (ID3 TXXX and friends).
type UserText struct {
	Description string
	Value       string
}

// UserURL is a named free-form link pair (ID3 WXXX).
type UserURL struct {
	Description string
	URL         string
}

// Comment is a language-tagged comment in the ID3 style.
type Comment struct {
	Encoding    string // text encoding name as found on disk
	Language    string // ISO-639-2 code, e.g. "eng"
	Description string
	Text        string
}

func (Text) tagValue()     {}
func (Picture) tagValue()  {}
func (UserText) tagValue() {}
func (UserURL) tagValue()  {}
func (Comment) tagValue()  {}

func (t Text) String() string { return string(t) }

func (p Picture) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", p.Type, p.MIME, len(p.Data))
}

func (u UserText) String() string { return u.Description + "=" + u.Value }

func (u UserURL) String() string { return u.Description + "=" + u.URL }

func (c Comment) String() string {
	if c.Description == "" {
		return c.Text
	}
	return c.Description + ": " + c.Text
}

// TextOf returns the textual payload of v, or "" for pictures.
func TextOf(v TagValue) string {
	switch v := v.(type) {
	case Text:
		return string(v)
	case UserText:
		return v.Value
	case UserURL:
		return v.URL
	case Comment:
		return v.Text
	default:
		return ""
	}
}

// EqualValues reports whether a and b are structurally equal.
func EqualValues(a, b TagValue) bool {
	switch a := a.(type) {
	case Picture:
		b, ok := b.(Picture)
		return ok && a.MIME == b.MIME && a.Type == b.Type &&
			a.Description == b.Description && bytes.Equal(a.Data, b.Data)
	case nil:
		return b == nil
	default:
		return a == b
	}
}

// EqualSequences reports whether two value sequences hold equal values in the same order.
func EqualSequences(a, b []TagValue) bool {
	return slices.EqualFunc(a, b, EqualValues)
}

// ValidateValue checks that v has a shape consistent with key's kind.
func ValidateValue(key FrameKey, v TagValue) error {
	if !key.Valid() {
		return &InvalidValueError{Key: key, Reason: "unknown key"}
	}
	switch v := v.(type) {
	case Picture:
		if key.Kind() != KindImage {
			return &InvalidValueError{Key: key, Reason: "picture on a non-image key"}
		}
		if len(v.Data) == 0 {
			return &InvalidValueError{Key: key, Reason: "picture without data"}
		}
	case UserText:
		if key != KeyUserDefinedText {
			return &InvalidValueError{Key: key, Reason: "user text pair outside userDefinedText"}
		}
	case UserURL:
		if key != KeyUserDefinedURL {
			return &InvalidValueError{Key: key, Reason: "user url pair outside userDefinedUrl"}
		}
	case Comment:
		if key != KeyComments {
			return &InvalidValueError{Key: key, Reason: "comment outside comments"}
		}
	case Text:
		if key.Kind() == KindImage {
			return &InvalidValueError{Key: key, Reason: "text on an image key"}
		}
	case nil:
		return &InvalidValueError{Key: key, Reason: "nil value"}
	}
	return nil
}
