package cli

import (
	"fmt"

	"github.com/openkraft/buildgate/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newLicenseCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Verify or rewrite license headers",
	}
	cmd.AddCommand(newLicenseCheckCmd(opts))
	cmd.AddCommand(newLicenseFormatCmd(opts))
	return cmd
}

func newLicenseCheckCmd(opts *options) *cobra.Command {
	var (
		jsonOutput bool
		modules    []string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report files whose header does not match the template",
		RunE: func(cmd *cobra.Command, args []string) error {
			violations, err := newLicenseService().Check(opts.path, modules)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), violations); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderViolations("License headers", violations))
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d files with missing or outdated license headers", len(violations))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringSliceVarP(&modules, "module", "m", nil, "Only these modules (repeatable)")
	return cmd
}

func newLicenseFormatCmd(opts *options) *cobra.Command {
	var modules []string

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Rewrite missing or outdated license headers",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixed, err := newLicenseService().Format(opts.path, modules)
			if err != nil {
				return err
			}
			if len(fixed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All license headers are up to date.")
				return nil
			}
			for _, f := range fixed {
				fmt.Fprintf(cmd.OutOrStdout(), "  fixed %s\n", f)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d files updated\n", len(fixed))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&modules, "module", "m", nil, "Only these modules (repeatable)")
	return cmd
}
