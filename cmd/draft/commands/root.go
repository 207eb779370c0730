// Package commands implements the CLI commands for draft.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/draft/internal/app"
	"go.trai.ch/draft/internal/build"
	"go.trai.ch/draft/internal/core/domain"
)

// CLI represents the command line interface for draft.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	json    *bool
}

// Application represents the application logic interface.
type Application interface {
	Plan(ctx context.Context, opts app.PlanOptions) (*domain.BuildPlan, error)
}

// JSONSwitcher is implemented by loggers that can emit JSON records.
type JSONSwitcher interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app. When log implements
// JSONSwitcher, the --json flag switches it to JSON records.
func New(a Application, log any) *CLI {
	rootCmd := &cobra.Command{
		Use:           "draft",
		Short:         "Construct dependency-ordered build plans from a project model",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
		json:    rootCmd.PersistentFlags().Bool("json", false, "Emit log records as JSON"),
	}

	if switcher, ok := log.(JSONSwitcher); ok {
		rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
			switcher.SetJSON(*c.json)
		}
	}

	rootCmd.AddCommand(c.newPlanCmd())
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

// SetOutput sets the output and error writers for the root command.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}
