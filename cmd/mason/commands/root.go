// Package commands implements the CLI commands for the mason build tool.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
	"go.trai.ch/mason/internal/build"
)

// CLI represents the command line interface for mason.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "mason",
		Short:         "A build orchestrator for declarative package specifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	// The state directory is consumed before wiring; the flag is declared
	// here so cobra accepts and documents it.
	rootCmd.PersistentFlags().String("state-dir", ".mason", "Directory holding the result store and build areas")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}
