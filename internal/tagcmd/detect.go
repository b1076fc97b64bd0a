package tagcmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/tagengine"
)

var detectCmd = &cobra.Command{
	Use:   "detect PATH...",
	Short: "print the primary format and every tag container found",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := bufio.NewWriter(cmd.OutOrStdout())
		fmtStr := "%-40s\t%-8s\t%s\n"
		if _, err := fmt.Fprintf(w, fmtStr, "PATH", "PRIMARY", "FOUND"); err != nil {
			return err
		}
		for _, path := range args {
			f, size, err := openFile(path)
			if err != nil {
				return err
			}
			primary := tagengine.DetectFormat(f, size, path)
			all := tagengine.DetectAll(f, size, path)
			_ = f.Close() //nolint:errcheck // Read-only

			found := make([]string, 0, len(all))
			for _, format := range all {
				found = append(found, format.String())
			}
			if _, err := fmt.Fprintf(w, fmtStr, path, primary, strings.Join(found, ",")); err != nil {
				return err
			}
		}
		return w.Flush()
	},
}
