package cli

import (
	"fmt"
	"path/filepath"

	"github.com/openkraft/buildgate/internal/adapters/outbound/history"
	"github.com/openkraft/buildgate/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous runs of this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(opts.path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			entries, err := history.New().Load(root)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	return cmd
}
