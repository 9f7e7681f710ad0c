package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/session"
)

// exportToFile renders the session's document and writes it to path.
func exportToFile(cmd *cobra.Command, p *pipeline.Pipeline, s *session.Session, path string) (*exportSummary, error) {
	file, err := p.Export(commandContext(cmd), s)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, file.Data); err != nil {
		return nil, err
	}
	Log.Info().Str("path", path).Int("pages", file.Pages).Int("bytes", len(file.Data)).Msg("PDF written")
	return &exportSummary{Path: path, Pages: file.Pages, Substituted: file.Substituted}, nil
}

func printExportSummary(out io.Writer, st styles, summary *exportSummary) {
	fmt.Fprintln(out, st.success.Render(fmt.Sprintf("PDF written to %s (%d page(s))", summary.Path, summary.Pages)))
	if summary.Substituted > 0 {
		fmt.Fprintln(out, st.muted.Render(fmt.Sprintf("%d character(s) outside the PDF charset were replaced.", summary.Substituted)))
	}
}

// --- Command Runner ---

// exportCmdRunner holds the dependencies for the export command.
type exportCmdRunner struct {
	pipeline       *pipeline.Pipeline
	session        *session.Session
	exportFilename string
}

func newExportCmdRunner() (*exportCmdRunner, func(), error) {
	provider, p, err := loadPipeline()
	if err != nil {
		return nil, nil, err
	}
	return &exportCmdRunner{
		pipeline:       p,
		session:        provider.Sessions.Get(session.DefaultID),
		exportFilename: provider.Exporter.Options().Filename,
	}, closeProvider(provider), nil
}

// NewExportCmdRunnerForTest creates a runner with explicitly provided dependencies.
func NewExportCmdRunnerForTest(p *pipeline.Pipeline, s *session.Session, exportFilename string) *exportCmdRunner {
	return &exportCmdRunner{pipeline: p, session: s, exportFilename: exportFilename}
}

// Run writes the session's current document, or the --input text, as a PDF.
func (r *exportCmdRunner) Run(cmd *cobra.Command, args []string) error {
	errOut := cmd.ErrOrStderr()
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	s := r.session
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		name, _ := cmd.Flags().GetString("name")
		tmp, err := inputSession(commandContext(cmd), cmd, input, name)
		if err != nil {
			printErrorHint(errOut, err)
			return err
		}
		s = tmp
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = r.exportFilename
	}
	summary, err := exportToFile(cmd, r.pipeline, s, path)
	if err != nil {
		printErrorHint(errOut, err)
		return err
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, summary)
	}
	printExportSummary(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()), summary)
	return nil
}

// --- Cobra Command ---

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the generated requirements as a PDF",
		Long: `Renders the current session's generated text as a paginated PDF.

The session store must still hold the document (redis backend), or pass
--input with a text file ("-" reads stdin) to export previously saved output.
Text read with --input is rendered as given and does not replace the
document held by the session. Characters outside the PDF charset are replaced, never dropped.`,
		Example: `  reqsmith generate --name Demo > requirements.txt
  reqsmith export --input requirements.txt --name Demo -f demo.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := newExportCmdRunner()
			if err != nil {
				printErrorHint(cmd.ErrOrStderr(), err)
				return err
			}
			defer cleanup()
			return runner.Run(cmd, args)
		},
	}

	cmd.Flags().StringP("file", "f", "", "Output path (default from export.filename)")
	cmd.Flags().String("input", "", "Read the document text from this file instead of the session")
	cmd.Flags().String("name", "", "Project name recorded with --input (used as the PDF title)")
	return cmd
}
