package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/config"
)

const (
	secretStatusSet     = "set"
	secretStatusMissing = "not set"
)

// secretStatus reports whether a secret resolves, never its value.
type secretStatus struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
}

type configShowResult struct {
	Config  *config.AppConfig `json:"config" yaml:"config"`
	Secrets []secretStatus    `json:"secrets" yaml:"secrets"`
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current reqsmith configuration",
		Long: `Displays the currently loaded configuration values from config.yaml and
REQSMITH_* environment variables, and whether each secret is set.
Secret values are never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			cfgProvider, keyringClient := newConfigDeps()
			if err := configShowRunE(cfgProvider, keyringClient, cmd.OutOrStdout(), format); err != nil {
				printErrorHint(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}
}

// configShowRunE contains the core logic for the 'config show' command.
func configShowRunE(cfgProvider ConfigProvider, keyringClient KeyringClient, writer io.Writer, format string) error {
	cfg, err := cfgProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	result := configShowResult{Config: cfg}
	for _, name := range config.SecretNames() {
		result.Secrets = append(result.Secrets, secretStatus{Name: name, Status: lookupSecretStatus(keyringClient, name)})
	}

	if format != formatText {
		return writeStructured(writer, format, result)
	}

	st := newStyles(writer)
	fmt.Fprintln(writer, st.heading.Render("Current reqsmith Configuration:"))
	fmt.Fprintf(writer, "  LLM Provider:   %s\n", cfg.LLM.Provider)
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		fmt.Fprintf(writer, "    OpenAI Model: %s\n", cfg.LLM.OpenAI.ModelName)
		if cfg.LLM.OpenAI.BaseURL != "" {
			fmt.Fprintf(writer, "    OpenAI BaseURL: %s\n", cfg.LLM.OpenAI.BaseURL)
		}
	default:
		fmt.Fprintf(writer, "    (No specific settings shown for provider '%s')\n", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout > 0 {
		fmt.Fprintf(writer, "  LLM Timeout:    %s\n", cfg.LLM.Timeout)
	}
	fmt.Fprintf(writer, "  Ticket Filing:  %s\n", enabledLabel(cfg.Tracker.Enabled))
	if cfg.Tracker.Enabled {
		fmt.Fprintf(writer, "    Issue Type:   %s\n", cfg.Tracker.IssueType)
	}
	fmt.Fprintf(writer, "  Export File:    %s (%s)\n", cfg.Export.Filename, cfg.Export.Charset)
	fmt.Fprintf(writer, "  Session Store:  %s\n", cfg.Session.Backend)
	if cfg.Session.Backend == config.BackendRedis {
		fmt.Fprintf(writer, "    Redis:        %s db %d (ttl %s)\n", cfg.Session.RedisAddr, cfg.Session.RedisDB, cfg.Session.TTL)
	}
	fmt.Fprintf(writer, "  Server Addr:    %s\n", cfg.Server.Addr)
	if len(cfg.Server.AllowedOrigins) > 0 {
		fmt.Fprintf(writer, "    CORS Origins: %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	}

	fmt.Fprintln(writer, "  Secrets:")
	for _, s := range result.Secrets {
		fmt.Fprintf(writer, "    %-17s %s\n", s.Name+":", s.Status)
	}
	fmt.Fprintln(writer, st.muted.Render("Use 'reqsmith config set-secret NAME VALUE' to store a secret."))
	return nil
}

func lookupSecretStatus(kc KeyringClient, name string) string {
	_, err := kc.GetSecret(name)
	switch {
	case err == nil:
		return secretStatusSet
	case errors.Is(err, config.ErrSecretNotFound):
		return secretStatusMissing
	default:
		return fmt.Sprintf("unknown (%v)", err)
	}
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
