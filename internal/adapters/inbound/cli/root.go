package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
)

// options are the flags shared by every command.
type options struct {
	path       string
	verbose    bool
	properties []string

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "buildgate",
		Short: "Quality gates and publishing for multi-module library workspaces",
		Long: "buildgate lints, verifies license headers, tests and reports every module of a " +
			"workspace, then packages and publishes it to the snapshot or release repository " +
			"selected by the workspace version.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.path, "path", ".", "Workspace root")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().StringArrayVarP(&opts.properties, "property", "P", nil, "Property override key=value (repeatable)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newPlanCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newLicenseCmd(opts))
	cmd.AddCommand(newBundleCmd(opts))
	cmd.AddCommand(newPublishCmd(opts))
	cmd.AddCommand(newChannelCmd())
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
