package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openkraft/buildgate/internal/adapters/outbound/config"
	"github.com/openkraft/buildgate/internal/adapters/outbound/scanner"
	"github.com/openkraft/buildgate/internal/domain"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *options) *cobra.Command {
	var (
		group string
		ver   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a buildgate.yaml configuration file",
		Long:  "Create a buildgate.yaml with the default settings and every module directory found under the workspace root.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.path
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			file := domain.DefaultWorkspaceFile()
			if group != "" {
				file.Group = group
			}
			if ver != "" {
				file.Version = ver
			}

			// Record discovered modules so the file is complete on its own.
			modules, err := scanner.New().Scan(absPath, file)
			if err != nil {
				return err
			}
			for _, m := range modules {
				file.Modules = append(file.Modules, domain.ModuleSpec{Name: m.Name})
			}
			if err := file.Validate(); err != nil {
				return err
			}

			dest, err := config.New().Write(absPath, file, force)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(file.Modules))
			for _, m := range file.Modules {
				names = append(names, m.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", filepath.Base(dest))
			if len(names) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Modules: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "Maven group id (default net.kyori.moonshine)")
	cmd.Flags().StringVar(&ver, "version", "", "Workspace version (default 2.0.0-SNAPSHOT)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing buildgate.yaml")
	return cmd
}
