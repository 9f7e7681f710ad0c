package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/config"
)

// configLocateRunE contains the core logic for the config locate command.
func configLocateRunE(cfgProvider ConfigProvider, out io.Writer) error {
	configDir, err := cfgProvider.EnsureConfigDir()
	if err != nil {
		return fmt.Errorf("error ensuring config directory: %w", err)
	}

	fmt.Fprintf(out, "Configuration directory: %s\n", configDir)
	fmt.Fprintln(out, "Expected configuration files:")
	fmt.Fprintf(out, "- %s\n", filepath.Join(configDir, config.DefaultConfigFileName))
	fmt.Fprintf(out, "- %s (optional, secrets)\n", filepath.Join(configDir, config.DefaultEnvFileName))
	fmt.Fprintf(out, "Override the directory with %s.\n", config.ConfigDirEnvVar)
	return nil
}

func newConfigLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Locate reqsmith configuration files",
		Long: `Displays the paths to the configuration files being used by reqsmith.
This command helps you find where reqsmith is looking for its settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgProvider, _ := newConfigDeps()
			return configLocateRunE(cfgProvider, cmd.OutOrStdout())
		},
	}
}
