package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/openkraft/buildgate/internal/adapters/outbound/tui"
	"github.com/openkraft/buildgate/internal/application"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/spf13/cobra"
)

type runFlags struct {
	jsonOutput bool
	ci         bool
	jobs       int
	modules    []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&f.ci, "ci", false, "CI mode: verify headers without rewriting; defaults to the CI environment variable")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Modules processed in parallel (default: number of CPUs)")
	cmd.Flags().StringSliceVarP(&f.modules, "module", "m", nil, "Only these modules (repeatable)")
}

func (f *runFlags) request(cmd *cobra.Command, opts *options) application.RunRequest {
	return application.RunRequest{
		Root:    opts.path,
		CI:      resolveCI(cmd, f.ci),
		Jobs:    f.jobs,
		Modules: f.modules,
	}
}

func newRunCmd(opts *options) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run lint, license, tests and coverage for every module",
		Long:  "Run every module through its quality gates, then its tests, then the coverage report. Modules run in parallel and fail independently; the command exits non-zero unless every module passed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			summary, err := newPipelineService(opts).Run(ctx, flags.request(cmd, opts))
			if err != nil {
				return err
			}
			return reportRun(cmd, summary, flags.jsonOutput)
		},
	}
	flags.register(cmd)
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run only the lint and license gates",
		Long:  "Run the quality gates of every module without tests or reports. Useful as a pre-commit check.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			svc := application.NewCheckService(newPipelineService(opts))
			summary, err := svc.Check(ctx, flags.request(cmd, opts))
			if err != nil {
				return err
			}
			return reportRun(cmd, summary, flags.jsonOutput)
		},
	}
	flags.register(cmd)
	return cmd
}

func reportRun(cmd *cobra.Command, summary *domain.RunSummary, jsonOutput bool) error {
	if jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderRun(summary))
	}

	if !summary.Passed() {
		return fmt.Errorf("%d of %d modules did not pass", failedModules(summary), len(summary.Modules))
	}
	return nil
}

func failedModules(s *domain.RunSummary) int {
	n := 0
	for _, m := range s.Modules {
		if m.Outcome != domain.OutcomePassed {
			n++
		}
	}
	return n
}
