package cli

import (
	"fmt"
	"os"

	"github.com/openkraft/buildgate/internal/adapters/outbound/tui"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/spf13/cobra"
)

type planOutput struct {
	Workspace domain.WorkspaceConfig      `json:"workspace"`
	Channel   domain.Channel              `json:"channel"`
	Modules   []domain.ModulePolicy       `json:"modules"`
	Gate      domain.QualityGatePolicy    `json:"gate"`
	Coverage  domain.CoverageReportPolicy `json:"coverage"`
}

func newPlanCmd(opts *options) *cobra.Command {
	var (
		jsonOutput bool
		ci         bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the configured policy of every module",
		Long:  "Load the workspace and print each module's coordinates, language levels, compile arguments, bundles and the gate list, without running anything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := newWorkspaceService().Load(opts.path)
			if err != nil {
				return err
			}

			ciMode := resolveCI(cmd, ci)
			gate := domain.NewQualityGatePolicy(ciMode, nil)
			if len(ws.Policies) > 0 {
				gate = ws.GatePolicy(ws.Policies[0], ciMode)
			}
			cov := ws.CoveragePolicy()

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), planOutput{
					Workspace: ws.Config,
					Channel:   ws.Config.Channel(),
					Modules:   ws.Policies,
					Gate:      gate,
					Coverage:  cov,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderPlan(ws.Config, ws.Policies, gate, cov))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&ci, "ci", false, "Plan for CI (no license auto-fix); defaults to the CI environment variable")
	return cmd
}

// resolveCI returns the --ci flag when given, otherwise the CI environment
// variable.
func resolveCI(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("ci") {
		return flag
	}
	return domain.ParseCIFlag(os.Getenv("CI"))
}
