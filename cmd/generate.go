package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/project"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

// exportSummary describes a PDF written to disk.
type exportSummary struct {
	Path        string `json:"path" yaml:"path"`
	Pages       int    `json:"pages" yaml:"pages"`
	Substituted int    `json:"substituted" yaml:"substituted"`
}

// generateResult is what generate prints in json and yaml mode.
type generateResult struct {
	Request  project.Request       `json:"request" yaml:"request"`
	Document *session.Document     `json:"document" yaml:"document"`
	PDF      *exportSummary        `json:"pdf,omitempty" yaml:"pdf,omitempty"`
	Ticket   *tracker.TicketResult `json:"ticket,omitempty" yaml:"ticket,omitempty"`
}

// --- Command Runner ---

// generateCmdRunner holds the dependencies for the generate command.
type generateCmdRunner struct {
	pipeline       *pipeline.Pipeline
	session        *session.Session
	exportFilename string
}

// newGenerateCmdRunner builds a runner from the provider. The returned func
// releases provider resources.
func newGenerateCmdRunner() (*generateCmdRunner, func(), error) {
	provider, p, err := loadPipeline()
	if err != nil {
		return nil, nil, err
	}
	return &generateCmdRunner{
		pipeline:       p,
		session:        provider.Sessions.Get(session.DefaultID),
		exportFilename: provider.Exporter.Options().Filename,
	}, closeProvider(provider), nil
}

// NewGenerateCmdRunnerForTest creates a runner with explicitly provided dependencies.
func NewGenerateCmdRunnerForTest(p *pipeline.Pipeline, s *session.Session, exportFilename string) *generateCmdRunner {
	return &generateCmdRunner{pipeline: p, session: s, exportFilename: exportFilename}
}

// Run collects the project attributes, generates the document, and
// optionally writes a PDF and files a ticket.
func (r *generateCmdRunner) Run(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	errOut := cmd.ErrOrStderr()

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	req, err := collectRequest(cmd)
	if err != nil {
		printErrorHint(errOut, err)
		return err
	}

	st := newStyles(errOut)
	fmt.Fprintln(errOut, st.muted.Render(fmt.Sprintf("Generating requirements for %s (%s, %s, %s)...",
		displayName(req.Name), req.Industry, req.Methodology, req.Technology)))

	gen, err := r.pipeline.StartGeneration(ctx, r.session, req)
	if err != nil {
		printErrorHint(errOut, err)
		return err
	}
	doc, err := gen.Wait(ctx)
	if err != nil {
		printErrorHint(errOut, err)
		return err
	}

	result := generateResult{Request: req, Document: doc}

	if wantPDF, _ := cmd.Flags().GetBool("pdf"); wantPDF {
		path, _ := cmd.Flags().GetString("pdf-file")
		if path == "" {
			path = r.exportFilename
		}
		summary, err := exportToFile(cmd, r.pipeline, r.session, path)
		if err != nil {
			printErrorHint(errOut, err)
			return err
		}
		result.PDF = summary
	}

	if wantTicket, _ := cmd.Flags().GetBool("ticket"); wantTicket {
		summary, _ := cmd.Flags().GetString("summary")
		force, _ := cmd.Flags().GetBool("force")
		ticket, err := r.pipeline.FileTicket(ctx, r.session, summary, force)
		if err != nil {
			printErrorHint(errOut, err)
			return err
		}
		result.Ticket = ticket
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, result)
	}
	return printGenerateText(cmd.OutOrStdout(), result)
}

func printGenerateText(out io.Writer, result generateResult) error {
	st := newStyles(out)
	fmt.Fprintln(out, st.heading.Render("Requirements for "+displayName(result.Request.Name)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, result.Document.Text)
	if result.PDF != nil {
		fmt.Fprintln(out)
		printExportSummary(out, st, result.PDF)
	}
	if result.Ticket != nil {
		fmt.Fprintln(out)
		printTicketResult(out, st, result.Ticket)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "untitled project"
	}
	return name
}

// loadPipeline builds the provider and a pipeline over it.
func loadPipeline(opts ...pipeline.Option) (*Provider, *pipeline.Pipeline, error) {
	provider, err := newProvider()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to initialize dependency provider")
		return nil, nil, err
	}
	p, err := provider.Pipeline(opts...)
	if err != nil {
		provider.Close()
		return nil, nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	return provider, p, nil
}

func closeProvider(provider *Provider) func() {
	return func() {
		if err := provider.Close(); err != nil {
			Log.Warn().Err(err).Msg("Failed to close provider resources")
		}
	}
}

// --- Cobra Command ---

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate user stories, acceptance criteria and a BRD summary",
		Long: `Sends the project attributes to the chat model and prints the generated
requirements: three user stories, acceptance criteria for each, a BRD
summary and a methodology/technology fit review.

Industry, methodology and technology accept one of the values listed by
'reqsmith options' (case-insensitive); unset options default to the first
value. Use --interactive to be prompted for each attribute.

With the in-memory session backend nothing survives the command, so use
--pdf and --ticket to export or file the result in the same run.`,
		Example: `  reqsmith generate --name "Checkout Revamp" --description "One-page checkout" \
    --industry Retail --methodology Scrum --technology "Web App + Cloud Backend" --pdf
  reqsmith generate -i --ticket --summary "Checkout requirements"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := newGenerateCmdRunner()
			if err != nil {
				printErrorHint(cmd.ErrOrStderr(), err)
				return err
			}
			defer cleanup()
			return runner.Run(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.String("name", "", "Project name")
	flags.String("description", "", "Project description")
	flags.String("industry", "", "Industry (see 'reqsmith options')")
	flags.String("methodology", "", "Delivery methodology (see 'reqsmith options')")
	flags.String("technology", "", "Technology stack (see 'reqsmith options')")
	flags.BoolP("interactive", "i", false, "Prompt for each project attribute")
	flags.Bool("pdf", false, "Also write the result as a PDF")
	flags.String("pdf-file", "", "PDF path for --pdf (default from export.filename)")
	flags.Bool("ticket", false, "Also file the result as a Jira ticket")
	flags.String("summary", "", "Ticket summary for --ticket (default derived from the project name)")
	flags.Bool("force", false, "File a new ticket even if one was filed for this document")

	registerOptionCompletions(cmd)
	return cmd
}

// registerOptionCompletions offers the closed option sets to shell completion.
func registerOptionCompletions(cmd *cobra.Command) {
	complete := func(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	_ = cmd.RegisterFlagCompletionFunc("industry", complete(labels(project.Industries())))
	_ = cmd.RegisterFlagCompletionFunc("methodology", complete(labels(project.Methodologies())))
	_ = cmd.RegisterFlagCompletionFunc("technology", complete(labels(project.Technologies())))
}
