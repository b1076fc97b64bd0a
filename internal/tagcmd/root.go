// Package tagcmd implements the tagengine command line.
package tagcmd

import (
	"context"
	"os"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simonhull/tagengine"
)

const configName = "tagengine/config.toml"

var (
	backend *tagengine.Backend
	ctx     = context.Background()

	configPath string
	logLevel   string
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default $XDG_CONFIG_HOME/"+configName+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "one of debug, info, warn, error")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:          "tagengine",
	Short:        "Read and rewrite audio metadata tags",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func setup(cmd *cobra.Command) error {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrap(err, "--log-level")
	}
	log.SetLevel(level)

	path := configPath
	if path == "" {
		// A missing default file means defaults.
		if found, err := xdg.SearchConfigFile(configName); err == nil {
			path = found
		}
	}
	cfg, err := tagengine.LoadConfig(path)
	if err != nil {
		return err
	}
	if path != "" {
		log.WithField("path", path).Debug("loaded config")
	}

	backend = tagengine.New(tagengine.WithConfig(cfg), tagengine.WithLogger(log))
	return nil
}

func openFile(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // Already failing
		return nil, 0, err
	}
	return f, info.Size(), nil
}
