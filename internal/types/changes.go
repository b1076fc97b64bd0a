package types

// Changes is a write request.
//
// Tags holds the complete replacement sequence for each targeted key:
// an absent key is left untouched, an empty sequence deletes the key.
type Changes struct {
	Paths []string
	Tags  Tags

	// DryRun computes diffs without touching any file.
	DryRun bool
}

// Validate checks every value against its key's kind.
func (c Changes) Validate() error {
	for _, key := range c.TargetKeys() {
		for _, v := range c.Tags[key] {
			if err := ValidateValue(key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// TargetKeys returns the keys the request touches, deletions included, in declaration order.
func (c Changes) TargetKeys() []FrameKey {
	keys := make([]FrameKey, 0, len(c.Tags))
	for _, k := range AllFrameKeys() {
		if _, ok := c.Tags[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// WriteStatus is the outcome of writing one path.
type WriteStatus int

const (
	// StatusOK means the file was rewritten.
	StatusOK WriteStatus = iota // ok
	// StatusFailed means reading or rewriting failed; the file is unchanged.
	StatusFailed // failed
	// StatusUnsupported means no codec claims the file.
	StatusUnsupported // unsupported
	// StatusDryRun means diffs were computed but nothing was written.
	StatusDryRun // dry-run
)

func (s WriteStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusUnsupported:
		return "unsupported"
	case StatusDryRun:
		return "dry-run"
	default:
		return "unknown"
	}
}

// TagDiff records one key whose values changed.
// Before is nil when the key was absent; After is nil when it was deleted.
type TagDiff struct {
	Key    FrameKey
	Before []TagValue
	After  []TagValue
}

// WriteResult is the outcome for one path of a Changes request.
type WriteResult struct {
	Path   string
	Status WriteStatus
	Diff   []TagDiff
	Err    error
}

// ComputeDiff compares old tags against the targeted keys of update.
func ComputeDiff(old, update Tags) []TagDiff {
	var diffs []TagDiff
	for _, key := range (Changes{Tags: update}).TargetKeys() {
		before := old[key]
		after := update[key]
		if EqualSequences(before, after) {
			continue
		}
		d := TagDiff{Key: key}
		if len(before) > 0 {
			d.Before = before
		}
		if len(after) > 0 {
			d.After = after
		}
		diffs = append(diffs, d)
	}
	return diffs
}
