package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize reqsmith configuration",
		Long: `Creates the configuration directory with a default config.yaml and a
.env.example listing the secrets. Existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgProvider, _ := newConfigDeps()
			return configInitRunE(cfgProvider, cmd.OutOrStdout())
		},
	}
}

// configInitRunE contains the core logic for the config init command.
func configInitRunE(configProvider ConfigProvider, writer io.Writer) error {
	log.Info().Msg("Initializing configuration...")
	if err := configProvider.CreateDefaultConfigFiles(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize configuration files")
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	log.Info().Msg("Configuration initialization complete.")
	fmt.Fprintln(writer, "Configuration directory and default files ensured.")
	return nil
}
