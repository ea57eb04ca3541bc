package cli

import (
	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/edify/internal/application/startup"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startup.Initialize(a.cfg)
		},
	}
	cmd.Flags().String("port", "", "listen port (default 8080)")
	return cmd
}
