package tagcmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/simonhull/tagengine"
)

var readJSON bool

func init() {
	readCmd.Flags().BoolVar(&readJSON, "json", false, "print files as JSON")
}

var readCmd = &cobra.Command{
	Use:   "read PATH...",
	Short: "print the tags of each file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := backend.ReadMany(ctx, args...)
		if err != nil {
			return err
		}
		if readJSON {
			return printJSON(cmd.OutOrStdout(), files)
		}
		w := bufio.NewWriter(cmd.OutOrStdout())
		for i, file := range files {
			if i > 0 {
				fmt.Fprintln(w)
			}
			printFile(w, file)
		}
		return w.Flush()
	},
}

// jsonFile is the --json shape of a read result.
type jsonFile struct {
	ID         string                  `json:"id"`
	Path       string                  `json:"path"`
	Format     string                  `json:"format"`
	TagFormats []string                `json:"tagFormats"`
	Tags       tagengine.Tags          `json:"tags"`
	Freeforms  []tagengine.FreeformTag `json:"freeforms,omitempty"`
}

func printJSON(w io.Writer, files []*tagengine.File) error {
	out := make([]jsonFile, 0, len(files))
	for _, f := range files {
		jf := jsonFile{
			ID:         f.ID.String(),
			Path:       f.Path,
			Format:     f.Format.String(),
			TagFormats: make([]string, 0, len(f.TagFormats)),
			Tags:       f.Tags,
			Freeforms:  f.Freeforms,
		}
		for _, tf := range f.TagFormats {
			jf.TagFormats = append(jf.TagFormats, tf.String())
		}
		out = append(out, jf)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printFile(w io.Writer, file *tagengine.File) {
	fmt.Fprintf(w, "%s (%s)\n", file.Path, file.Format)
	for key, values := range file.Tags.All() {
		for _, v := range values {
			fmt.Fprintf(w, "  %-28s %s\n", key, describe(v))
		}
	}
	for _, ff := range file.Freeforms {
		fmt.Fprintf(w, "  %-28s %s\n", ff.Mean+":"+ff.Name, ff.Value)
	}
}

// describe renders a value on one line. Pictures are summarized.
func describe(v tagengine.TagValue) string {
	switch v := v.(type) {
	case tagengine.Picture:
		parts := []string{v.MIME, humanize.Bytes(uint64(len(v.Data)))}
		if v.Type != tagengine.PictureTypeNone {
			parts = append(parts, v.Type.String())
		}
		if v.Description != "" {
			parts = append(parts, fmt.Sprintf("%q", v.Description))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case tagengine.UserText:
		return v.Description + ": " + v.Value
	case tagengine.UserURL:
		return v.Description + ": " + v.URL
	case tagengine.Comment:
		if v.Language != "" {
			return "(" + v.Language + ") " + v.Text
		}
		return v.Text
	}
	return tagengine.TextOf(v)
}
