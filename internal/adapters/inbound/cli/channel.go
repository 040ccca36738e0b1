package cli

import (
	"fmt"

	"github.com/openkraft/buildgate/internal/domain"
	"github.com/spf13/cobra"
)

func newChannelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channel <version>",
		Short: "Print the publication channel for a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), domain.ResolveChannel(args[0]))
			return nil
		},
	}
}
