package tagcmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/simonhull/tagengine"
	"github.com/simonhull/tagengine/internal/types"
)

var (
	writeSets    []string
	writeDeletes []string
	writeChanges string
	writeDryRun  bool
)

func init() {
	writeCmd.Flags().StringArrayVar(&writeSets, "set", nil, "key=value; repeat a key for several values")
	writeCmd.Flags().StringArrayVar(&writeDeletes, "delete", nil, "key to remove")
	writeCmd.Flags().StringVar(&writeChanges, "changes", "", "JSON file mapping keys to values")
	writeCmd.Flags().BoolVar(&writeDryRun, "dry-run", false, "print diffs without writing")
}

var writeCmd = &cobra.Command{
	Use:   "write [--set key=value]... [--delete key]... PATH...",
	Short: "rewrite tags and print what changed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := buildTags(writeChanges, writeSets, writeDeletes)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return errors.New("nothing to write: use --set, --delete or --changes")
		}

		results := backend.WriteChanges(ctx, tagengine.Changes{
			Paths:  args,
			Tags:   tags,
			DryRun: writeDryRun,
		})

		w := bufio.NewWriter(cmd.OutOrStdout())
		failed := printResults(w, results)
		if err := w.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			return errors.Errorf("%d of %d writes failed", failed, len(results))
		}
		return nil
	},
}

// buildTags merges a changes document with --set and --delete flags.
// Flags replace whole keys from the document.
func buildTags(changesPath string, sets, deletes []string) (tagengine.Tags, error) {
	tags := make(tagengine.Tags)
	if changesPath != "" {
		b, err := os.ReadFile(changesPath)
		if err != nil {
			return nil, errors.Wrap(err, "read changes")
		}
		if err := json.Unmarshal(b, &tags); err != nil {
			return nil, errors.Wrapf(err, "parse %s", changesPath)
		}
	}

	fromFlags := make(tagengine.Tags)
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		if !ok {
			return nil, errors.Errorf("--set %q: want key=value", set)
		}
		key, err := parseKey(name)
		if err != nil {
			return nil, err
		}
		v, err := parseValue(key, value)
		if err != nil {
			return nil, errors.Wrapf(err, "--set %s", name)
		}
		fromFlags.Add(key, v)
	}
	for key, values := range fromFlags {
		tags[key] = values
	}

	for _, name := range deletes {
		key, err := parseKey(name)
		if err != nil {
			return nil, err
		}
		tags.Set(key)
	}
	return tags, nil
}

func parseKey(name string) (tagengine.FrameKey, error) {
	key, ok := tagengine.ParseFrameKey(strings.TrimSpace(name))
	if !ok {
		return 0, &tagengine.UnknownKeyError{Name: name}
	}
	return key, nil
}

// parseValue reads a flag value into the shape key expects. Image keys
// take a file path; user text keys take "description=value". User URL
// keys take "description=url" or a bare URL, which may itself contain '='.
func parseValue(key tagengine.FrameKey, value string) (tagengine.TagValue, error) {
	switch {
	case key.Kind() == types.KindImage:
		data, err := os.ReadFile(value)
		if err != nil {
			return nil, errors.Wrap(err, "read picture")
		}
		return tagengine.Picture{
			MIME: types.SniffImageMIME(data),
			Data: data,
			Type: tagengine.PictureFrontCover,
		}, nil
	case key == tagengine.KeyUserDefinedText:
		desc, text, ok := strings.Cut(value, "=")
		if !ok {
			return nil, errors.Errorf("want description=value, got %q", value)
		}
		return tagengine.UserText{Description: desc, Value: text}, nil
	case key == tagengine.KeyUserDefinedURL:
		desc, url, ok := strings.Cut(value, "=")
		if !ok || strings.Contains(desc, ":") {
			desc, url = "", value
		}
		return tagengine.UserURL{Description: desc, URL: url}, nil
	}
	return tagengine.Text(value), nil
}

func printResults(w io.Writer, results []tagengine.WriteResult) (failed int) {
	for _, res := range results {
		fmt.Fprintf(w, "%s: %s\n", res.Path, res.Status)
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "  error: %v\n", res.Err)
			continue
		}
		for _, d := range res.Diff {
			fmt.Fprintf(w, "  %-28s %s -> %s\n", d.Key, describeAll(d.Before), describeAll(d.After))
		}
	}
	return failed
}

func describeAll(values []tagengine.TagValue) string {
	if len(values) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%q", describe(v)))
	}
	return strings.Join(parts, ", ")
}
