package tagcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/tagengine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := tagengine.GetVersionInfo()
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "tagengine %s (commit %s, built %s, %s)\n",
			v.Version, v.GitCommit, v.BuildTime, v.GoVersion)
		return err
	},
}
