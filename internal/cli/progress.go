package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newProgressCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or change stored progress",
	}
	cmd.AddCommand(
		newProgressShowCommand(a),
		newProgressToggleCommand(a),
		newProgressResetCommand(a),
		newProgressExportCommand(a),
		newProgressStatusCommand(a),
	)
	return cmd
}

func newProgressShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [roadmap-id]",
		Short: "Show progress for one roadmap, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			defer c.Close()

			p := newPrinter(cmd.OutOrStdout())
			if len(args) == 0 {
				for _, summary := range c.ProgressService.Overview() {
					roadmap, err := c.CatalogService.Roadmap(summary.RoadmapID)
					if err != nil {
						return err
					}
					p.RoadmapLine(roadmap, &summary)
				}
				return nil
			}

			roadmap, err := c.CatalogService.Roadmap(args[0])
			if err != nil {
				return err
			}
			summary, err := c.ProgressService.RoadmapSummary(roadmap.ID)
			if err != nil {
				return err
			}
			p.RoadmapDetail(roadmap, summary)
			return nil
		},
	}
}

func newProgressToggleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <roadmap-id> <phase> <step>",
		Short: "Flip a step between complete and incomplete (indices start at 0)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			phaseIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("phase must be an integer: %w", err)
			}
			stepIndex, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("step must be an integer: %w", err)
			}

			c, err := a.container()
			if err != nil {
				return err
			}
			defer c.Close()

			state, err := c.ProgressService.Toggle(args[0], phaseIndex, stepIndex)
			if err != nil {
				return err
			}
			if status := c.ProgressService.Status(); status.LastSaveError != "" {
				return fmt.Errorf("progress not saved: %s", status.LastSaveError)
			}
			newPrinter(cmd.OutOrStdout()).StepState(state)
			return nil
		},
	}
}

func newProgressResetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <roadmap-id>",
		Short: "Delete all progress for a roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			defer c.Close()

			removed, err := c.ProgressService.Reset(args[0])
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s progress reset\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no progress to reset\n", args[0])
			}
			return nil
		},
	}
}

func newProgressExportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored progress as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			defer c.Close()

			data, err := c.ProgressService.Export()
			if err != nil {
				return err
			}
			data = append(data, '\n')

			output, _ := cmd.Flags().GetString("output")
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newProgressStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where progress is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container()
			if err != nil {
				return err
			}
			defer c.Close()

			status := c.ProgressService.Status()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "driver:   %s\n", status.Driver)
			fmt.Fprintf(out, "key:      %s\n", status.Key)
			fmt.Fprintf(out, "storage:  %s\n", status.Storage)
			fmt.Fprintf(out, "roadmaps: %d\n", status.Roadmaps)
			if status.LoadError != "" {
				fmt.Fprintf(out, "load error: %s\n", status.LoadError)
			}
			return nil
		},
	}
}
