package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the given packages and everything they depend on",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			specs, _ := cmd.Flags().GetString("specs")
			jobs, _ := cmd.Flags().GetInt("jobs")
			force, _ := cmd.Flags().GetBool("force")
			hardKill, _ := cmd.Flags().GetBool("hard-kill")
			return c.app.Run(cmd.Context(), args, app.RunOptions{
				SpecPath: specs,
				Jobs:     jobs,
				Force:    force,
				HardKill: hardKill,
			})
		},
	}
	cmd.Flags().StringP("specs", "c", "specs.yaml", "Specification file or directory to load")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum concurrent package builds (0 means one per CPU)")
	cmd.Flags().Bool("force", false, "Rebuild every package, bypassing the result store")
	cmd.Flags().Bool("hard-kill", false, "Terminate running phases on interruption instead of letting them finish")
	return cmd
}
