package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/openkraft/buildgate/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newPublishCmd(opts *options) *cobra.Command {
	var (
		jsonOutput bool
		dryRun     bool
		modules    []string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload jars, bundles and POMs to the repository for the workspace version",
		Long: "Publish every module to the snapshot repository when the version ends with -SNAPSHOT " +
			"and to the release repository otherwise. Credentials come from the proxiUser and " +
			"proxiPassword properties; without them the upload is anonymous.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := newWorkspaceService().Load(opts.path)
			if err != nil {
				return err
			}
			ws, err = ws.Select(modules)
			if err != nil {
				return err
			}
			svc, err := newPublishService(opts)
			if err != nil {
				return err
			}

			if dryRun {
				plans, err := svc.Plan(ws)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), plans)
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderPublicationPlan(plans))
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			results, err := svc.Publish(ctx, ws)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderPublishResults(results))
			}
			for _, r := range results {
				if r.Error != "" {
					return fmt.Errorf("publishing %s: %s", r.Module, r.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the target URLs without uploading")
	cmd.Flags().StringSliceVarP(&modules, "module", "m", nil, "Only these modules (repeatable)")
	return cmd
}
