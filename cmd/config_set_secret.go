package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/config"
)

func newConfigSetSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-secret NAME VALUE",
		Short: "Store a secret securely in the OS keychain",
		Long: fmt.Sprintf(`Stores a secret in the operating system's keychain or keyring under the
service '%s'. Supported names: %s.

Secrets can also be supplied as environment variables of the same name or
in a .env file in the working or configuration directory.`,
			config.KeyringService, strings.Join(config.SecretNames(), ", ")),
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.SecretNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, keyringClient := newConfigDeps()
			if err := configSetSecretRun(keyringClient, cmd.OutOrStdout(), args[0], args[1]); err != nil {
				printErrorHint(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}
}

// configSetSecretRun contains the core logic for the set-secret command.
func configSetSecretRun(kc KeyringClient, writer io.Writer, name, value string) error {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !config.IsKnownSecret(name) {
		return fmt.Errorf("%w: %s (supported: %s)", config.ErrUnknownSecret, name, strings.Join(config.SecretNames(), ", "))
	}
	if value == "" {
		return errors.New("secret value cannot be empty")
	}

	log.Info().Str("secret", name).Msgf("Attempting to store secret in keychain for service '%s'...", config.KeyringService)
	if err := kc.SetSecret(name, value); err != nil {
		log.Error().Err(err).Str("secret", name).Msg("Failed to store secret in keychain")
		return fmt.Errorf("failed to store %s in keychain: %w", name, err)
	}

	fmt.Fprintf(writer, "%s stored successfully.\n", name)
	return nil
}
