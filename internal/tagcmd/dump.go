package tagcmd

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/tagengine/internal/mp4"
)

var dumpCmd = &cobra.Command{
	Use:   "dump PATH",
	Short: "print the MP4 box tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, size, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // Read-only
		return mp4.Dump(cmd.OutOrStdout(), f, size, args[0])
	},
}
