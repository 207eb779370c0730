package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/draft/internal/app"
	"go.trai.ch/draft/internal/core/domain"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	var opts app.PlanOptions

	cmd := &cobra.Command{
		Use:   "plan [targets...]",
		Short: "Construct the task plan for the given targets",
		Long:  "Construct the task plan for the given targets and their dependencies.\n" +
			"Targets are named Target or Project/Target.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}
			opts.Targets = args

			plan, err := c.app.Plan(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "planned %d tasks for %d targets\n",
				len(plan.Tasks()), len(plan.Targets()))

			if plan.HasErrors() {
				return domain.ErrPlanningFailed
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Configuration, "configuration", "c", "", "Build configuration (default Debug)")
	flags.StringVarP(&opts.Action, "action", "a", "", "Build action: build or install")
	flags.StringVar(&opts.Platform, "platform", "", "Target platform (default macosx)")
	flags.StringSliceVar(&opts.Archs, "arch", nil, "Architectures to build, overrides ARCHS")
	flags.StringSliceVar(&opts.Variants, "variant", nil, "Build variants, overrides BUILD_VARIANTS")
	flags.StringVar(&opts.ArenaRoot, "arena", "", "Root directory for build products and intermediates")
	flags.StringArrayVarP(&opts.Overrides, "define", "D", nil, "Override a build setting as KEY=VALUE")
	flags.StringVar(&opts.DumpDir, "dump", "", "Write every planned task to this directory")
	flags.StringVarP(&opts.Dir, "dir", "C", "", "Directory to start project discovery from")
	flags.BoolVarP(&opts.ContinueAfterErrors, "continue-after-errors", "k", false,
		"Keep planning the remaining targets after a target fails")

	return cmd
}
