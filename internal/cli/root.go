// Package cli implements the edify command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AtRiskMedia/edify/internal/application/container"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/pkg/config"
)

// app carries state resolved once per invocation.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "edify",
		Short:         "Self-paced learning roadmaps with local progress tracking",
		Long:          "Edify serves a set of learning roadmaps and remembers which steps you have completed.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (default .edify.yaml)")
	root.PersistentFlags().String("storage-driver", "", "progress storage driver: file, sqlite, libsql or memory")
	root.PersistentFlags().String("storage-path", "", "progress file or sqlite database path")
	root.PersistentFlags().String("catalog", "", "external catalog YAML (default: embedded)")

	root.AddCommand(
		newServeCommand(a),
		newRoadmapsCommand(a),
		newProgressCommand(a),
		newSysopCommand(),
	)
	return root
}

var flagBindings = map[string]string{
	"storage-driver": "storage.driver",
	"storage-path":   "storage.path",
	"catalog":        "catalog.path",
	"port":           "port",
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	a.v = config.New(path)

	for flagName, key := range flagBindings {
		if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
			if err := a.v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// container builds the services without the HTTP surface. Command output
// goes to the terminal, so logging is discarded.
func (a *app) container() (*container.Container, error) {
	return container.NewContainer(a.cfg, logging.NewNopLogger())
}
