package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the requirements form in a browser",
		Long: `Starts the web front end: a single page with the five project inputs, a
Generate button, the generated output, a PDF download and, when ticket
filing is enabled, a Jira ticket button. The same actions are available as
JSON under /api/v1 and via content negotiation on the form routes.

Each browser gets its own session through a cookie. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := newProvider()
			if err != nil {
				Log.Error().Err(err).Msg("Failed to initialize dependency provider")
				printErrorHint(cmd.ErrOrStderr(), err)
				return err
			}
			defer closeProvider(provider)()

			cfg := provider.AppConfig.Server
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}
			secure, _ := cmd.Flags().GetBool("secure-cookie")

			p, err := provider.Pipeline(pipeline.WithGenerateLimit(cfg.GeneratePerMinute))
			if err != nil {
				return err
			}

			if zerolog.GlobalLevel() > zerolog.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := server.New(server.Config{
				Addr:           cfg.Addr,
				AllowedOrigins: cfg.AllowedOrigins,
				Version:        version,
				SecureCookie:   secure,
			}, p, provider.Sessions)

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			Log.Info().Str("addr", cfg.Addr).Bool("ticket_filing", p.TrackerEnabled()).Msg("Starting web server")
			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	cmd.Flags().Bool("secure-cookie", false, "Mark the session cookie Secure (when served behind TLS)")
	return cmd
}
