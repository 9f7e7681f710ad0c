package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set during build time (e.g., via ldflags)
// Default is "dev" for local development.
var version = "dev"

// Log is the globally configured zerolog logger instance used throughout the cmd package.
// It's initialized in the root command's PersistentPreRunE based on the --log-level flag.
var Log = log.Logger

// configureLogger sets up the global zerolog logger on stderr.
func configureLogger(levelStr string) error {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		log.Warn().Msgf("Invalid log level '%s', defaulting to 'info'", levelStr)
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	Log = log.Logger.With().Timestamp().Logger()
	Log.Debug().Msgf("Log level set to '%s'", level.String())
	return nil
}

// NewRootCmd builds a fresh command tree. Every call returns independent
// commands and flags, so tests can execute it repeatedly.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reqsmith",
		Short: "Generate user stories, acceptance criteria and a BRD summary with an LLM",
		Long: `reqsmith turns five project attributes (name, description, industry,
methodology, technology) into user stories, acceptance criteria, a short BRD
summary and a methodology/technology fit review using a hosted chat model.
The result can be exported to PDF and filed as a Jira ticket.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				os.Exit(0)
			}
			lvl, _ := cmd.Flags().GetString("log-level")
			if err := configureLogger(lvl); err != nil {
				return err
			}
			_, err := outputFormat(cmd)
			return err
		},
	}

	root.PersistentFlags().String("log-level", "info", "Set log level (debug, info, warn, error, fatal, panic)")
	root.PersistentFlags().Bool("version", false, "Show application version")
	root.PersistentFlags().StringP("output", "o", formatText, "Output format (text|json|yaml)")

	root.AddCommand(
		newGenerateCmd(),
		newExportCmd(),
		newTicketCmd(),
		newOptionsCmd(),
		newServeCmd(),
		newConfigCmd(),
		newCompletionCmd(root),
	)
	return root
}

// Execute is the main entry point for the CLI, called from main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		Log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:
  $ source <(reqsmith completion bash)

Zsh:
  $ reqsmith completion zsh > "${fpath[1]}/_reqsmith"

Fish:
  $ reqsmith completion fish | source

PowerShell:
  PS> reqsmith completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell type %q", args[0])
			}
		},
	}
}
