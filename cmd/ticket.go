package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

func printTicketResult(out io.Writer, st styles, result *tracker.TicketResult) {
	if result.AlreadyFiled {
		fmt.Fprintln(out, st.muted.Render("A ticket was already filed for this document: "+result.Key))
		fmt.Fprintln(out, st.muted.Render("Use --force to file another one."))
		return
	}
	fmt.Fprintln(out, st.success.Render("Jira ticket created: "+result.Key))
	if result.Self != "" {
		fmt.Fprintf(out, "URL: %s\n", result.Self)
	}
}

// --- Command Runner ---

// ticketCmdRunner holds the dependencies for the ticket command.
type ticketCmdRunner struct {
	pipeline *pipeline.Pipeline
	session  *session.Session
}

func newTicketCmdRunner() (*ticketCmdRunner, func(), error) {
	provider, p, err := loadPipeline()
	if err != nil {
		return nil, nil, err
	}
	return &ticketCmdRunner{
		pipeline: p,
		session:  provider.Sessions.Get(session.DefaultID),
	}, closeProvider(provider), nil
}

// NewTicketCmdRunnerForTest creates a runner with explicitly provided dependencies.
func NewTicketCmdRunnerForTest(p *pipeline.Pipeline, s *session.Session) *ticketCmdRunner {
	return &ticketCmdRunner{pipeline: p, session: s}
}

// Run files the session's current document, or the --input text, as one ticket.
func (r *ticketCmdRunner) Run(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	errOut := cmd.ErrOrStderr()
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	s := r.session
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		name, _ := cmd.Flags().GetString("name")
		tmp, err := inputSession(ctx, cmd, input, name)
		if err != nil {
			printErrorHint(errOut, err)
			return err
		}
		s = tmp
	}

	summary, _ := cmd.Flags().GetString("summary")
	force, _ := cmd.Flags().GetBool("force")
	result, err := r.pipeline.FileTicket(ctx, s, summary, force)
	if err != nil {
		printErrorHint(errOut, err)
		return err
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, result)
	}
	printTicketResult(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()), result)
	return nil
}

// --- Cobra Command ---

func newTicketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "File the generated requirements as a Jira ticket",
		Long: `Creates one Jira issue whose description is the generated text, in the
project named by JIRA_PROJECT_KEY with the configured issue type.

A document is filed once; running ticket again reports the existing key
unless --force is given.

Use --input to file previously saved output ("-" reads stdin). That text is
filed as given and is never stored in the session, so the session's document
and its ticket key are left alone. Nothing records the key for --input text
either: every run files a new ticket.`,
		Example: `  reqsmith ticket --input requirements.txt --name "Checkout Revamp"
  reqsmith ticket --summary "Checkout requirements" --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := newTicketCmdRunner()
			if err != nil {
				printErrorHint(cmd.ErrOrStderr(), err)
				return err
			}
			defer cleanup()
			return runner.Run(cmd, args)
		},
	}

	cmd.Flags().String("summary", "", "Ticket summary (default derived from the project name)")
	cmd.Flags().Bool("force", false, "File a new ticket even if one was filed for this document")
	cmd.Flags().String("input", "", "File the text of this file without storing it in the session")
	cmd.Flags().String("name", "", "Project name recorded with --input")
	return cmd
}
