package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskledger/internal/config"
	"github.com/mesh-intelligence/taskledger/internal/paths"
)

func newInitCmd(e *env) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long:  "Create the configuration directory and a default config.yaml. An existing file is left unchanged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				dir string
				err error
			)
			if global {
				dir, err = paths.UserConfigDir()
			} else {
				dir, err = paths.ResolveConfigDir(e.flags.configDir)
			}
			if err != nil {
				return sysError(fmt.Errorf("resolve config directory: %w", err))
			}

			written, err := config.WriteDefault(dir)
			if err != nil {
				return sysError(err)
			}
			path := filepath.Join(dir, "config.yaml")
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "ℹ️  %s already exists\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "write to the per-user configuration directory")
	return cmd
}
