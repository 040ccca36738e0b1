package cli

import (
	"fmt"

	"github.com/openkraft/buildgate/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newBundleCmd(opts *options) *cobra.Command {
	var (
		jsonOutput bool
		modules    []string
	)

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Write the sources and javadoc archives of each module",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := newWorkspaceService().Load(opts.path)
			if err != nil {
				return err
			}
			ws, err = ws.Select(modules)
			if err != nil {
				return err
			}

			results, err := newBundleService(opts).BundleAll(cmd.Context(), ws)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderBundles(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringSliceVarP(&modules, "module", "m", nil, "Only these modules (repeatable)")
	return cmd
}
