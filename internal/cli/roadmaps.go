package cli

import (
	"github.com/spf13/cobra"
)

func newRoadmapsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "roadmaps",
		Aliases: []string{"ls"},
		Short:   "List roadmaps with their progress",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			defer c.Close()

			p := newPrinter(cmd.OutOrStdout())
			for _, summary := range c.ProgressService.Overview() {
				roadmap, err := c.CatalogService.Roadmap(summary.RoadmapID)
				if err != nil {
					return err
				}
				p.RoadmapLine(roadmap, &summary)
			}
			return nil
		},
	}
}
