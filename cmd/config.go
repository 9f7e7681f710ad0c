package cmd

import (
	"github.com/spf13/cobra"
)

// newConfigDeps is swapped by tests. Config commands avoid the full Provider
// so they keep working while config.yaml is broken or secrets are missing.
var newConfigDeps = func() (ConfigProvider, KeyringClient) {
	return &DefaultConfigProvider{}, &defaultKeyringClient{}
}

// newConfigCmd builds the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage reqsmith configuration",
		Long: `Provides commands to initialize, show, and locate reqsmith configuration files
and to store secrets in the OS keyring.
This command itself does not perform any action but serves as a parent for subcommands.`,
	}
	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigLocateCmd(),
		newConfigSetSecretCmd(),
	)
	return cmd
}
