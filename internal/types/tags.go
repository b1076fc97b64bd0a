package types

import (
	"iter"
	"maps"
	"slices"
)

// Tags maps each FrameKey to its ordered sequence of values.
//
// Insertion order within a key is preserved. A key with an empty sequence
// is treated the same as an absent key when reading, and as a deletion
// inside a write request.
type Tags map[FrameKey][]TagValue

// Get returns all values for key.
func (t Tags) Get(key FrameKey) []TagValue {
	return t[key]
}

// First returns the text of the first value for key, or "".
func (t Tags) First(key FrameKey) string {
	if vs := t[key]; len(vs) > 0 {
		return TextOf(vs[0])
	}
	return ""
}

// Texts returns the textual payload of every non-picture value for key.
func (t Tags) Texts(key FrameKey) []string {
	var out []string
	for _, v := range t[key] {
		if _, ok := v.(Picture); ok {
			continue
		}
		out = append(out, TextOf(v))
	}
	return out
}

// Pictures returns every picture stored under key.
func (t Tags) Pictures(key FrameKey) []Picture {
	var out []Picture
	for _, v := range t[key] {
		if p, ok := v.(Picture); ok {
			out = append(out, p)
		}
	}
	return out
}

// Set replaces the values for key.
func (t Tags) Set(key FrameKey, values ...TagValue) {
	t[key] = values
}

// SetText replaces the values for key with plain text values.
func (t Tags) SetText(key FrameKey, values ...string) {
	vs := make([]TagValue, 0, len(values))
	for _, v := range values {
		vs = append(vs, Text(v))
	}
	t[key] = vs
}

// Add appends a value for key.
func (t Tags) Add(key FrameKey, v TagValue) {
	t[key] = append(t[key], v)
}

// AddText appends non-empty text values for key.
func (t Tags) AddText(key FrameKey, values ...string) {
	for _, v := range values {
		if v != "" {
			t[key] = append(t[key], Text(v))
		}
	}
}

// Has reports whether key carries at least one value.
func (t Tags) Has(key FrameKey) bool {
	return len(t[key]) > 0
}

// Keys returns the populated keys in declaration order.
func (t Tags) Keys() []FrameKey {
	keys := slices.Collect(maps.Keys(t))
	slices.Sort(keys)
	return slices.DeleteFunc(keys, func(k FrameKey) bool { return len(t[k]) == 0 })
}

// All iterates populated keys in declaration order.
//
// Example:
//
//	for key, values := range file.Tags.All() {
//		fmt.Printf("%s: %v\n", key, values)
//	}
func (t Tags) All() iter.Seq2[FrameKey, []TagValue] {
	return func(yield func(FrameKey, []TagValue) bool) {
		for _, k := range t.Keys() {
			if !yield(k, t[k]) {
				return
			}
		}
	}
}

// Clone returns a copy of t whose sequences can be modified independently.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, vs := range t {
		out[k] = slices.Clone(vs)
	}
	return out
}

// Merge returns a copy of t with every key in update replacing the
// corresponding sequence. Keys mapped to empty sequences are removed.
func (t Tags) Merge(update Tags) Tags {
	out := t.Clone()
	for k, vs := range update {
		if len(vs) == 0 {
			delete(out, k)
			continue
		}
		out[k] = slices.Clone(vs)
	}
	return out
}
