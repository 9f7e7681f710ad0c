package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/project"
	"github.com/karolswdev/reqsmith/internal/session"
)

// inputCollector asks for the five project attributes on a terminal.
// One reader is shared by every prompt so buffered input is not lost.
type inputCollector struct {
	reader *bufio.Reader
	out    io.Writer
}

func newInputCollector(in io.Reader, out io.Writer) *inputCollector {
	return &inputCollector{reader: bufio.NewReader(in), out: out}
}

// text reads one free-text line. An empty answer keeps def.
func (c *inputCollector) text(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// choose shows a numbered menu and accepts a number or a label.
// An empty answer selects def, which must be one of choices.
func (c *inputCollector) choose(label string, choices []string, def string) (string, error) {
	fmt.Fprintf(c.out, "%s:\n", label)
	for i, choice := range choices {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, choice)
	}
	for {
		fmt.Fprintf(c.out, "Select 1-%d [%s]: ", len(choices), def)
		line, err := c.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			return def, nil
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
		for _, choice := range choices {
			if strings.EqualFold(choice, answer) {
				return choice, nil
			}
		}
		if err != nil {
			// Input ended on an invalid answer; there is nothing left to retry with.
			return "", fmt.Errorf("%w: %s %q", project.ErrUnknownOption, strings.ToLower(label), answer)
		}
		fmt.Fprintf(c.out, "%q is not one of the options.\n", answer)
	}
}

// collect prompts for every attribute, offering the current values as defaults.
func (c *inputCollector) collect(current project.Request) (project.Request, error) {
	name, err := c.text("Project name", current.Name)
	if err != nil {
		return project.Request{}, err
	}
	description, err := c.text("Project description", current.Description)
	if err != nil {
		return project.Request{}, err
	}
	industry, err := c.choose("Industry", labels(project.Industries()), string(current.Industry))
	if err != nil {
		return project.Request{}, err
	}
	methodology, err := c.choose("Methodology", labels(project.Methodologies()), string(current.Methodology))
	if err != nil {
		return project.Request{}, err
	}
	technology, err := c.choose("Technology", labels(project.Technologies()), string(current.Technology))
	if err != nil {
		return project.Request{}, err
	}
	return project.NewRequest(name, description, industry, methodology, technology)
}

func labels[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// requestFromFlags builds a Request from the generate flags. Unset option
// flags select the first option, like the form does.
func requestFromFlags(cmd *cobra.Command) (project.Request, error) {
	flags := cmd.Flags()
	name, _ := flags.GetString("name")
	description, _ := flags.GetString("description")
	industry, _ := flags.GetString("industry")
	methodology, _ := flags.GetString("methodology")
	technology, _ := flags.GetString("technology")

	if industry == "" {
		industry = string(project.Industries()[0])
	}
	if methodology == "" {
		methodology = string(project.Methodologies()[0])
	}
	if technology == "" {
		technology = string(project.Technologies()[0])
	}
	return project.NewRequest(name, description, industry, methodology, technology)
}

// collectRequest resolves the flags and, with --interactive, lets the user
// confirm or change every value.
func collectRequest(cmd *cobra.Command) (project.Request, error) {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return project.Request{}, err
	}
	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		return req, nil
	}
	Log.Debug().Msg("Collecting project attributes interactively")
	return newInputCollector(cmd.InOrStdin(), cmd.ErrOrStderr()).collect(req)
}

// inputSession reads text from path ("-" for stdin) into a throwaway
// in-memory session, so export and ticket can work on saved output without
// touching the configured session store.
func inputSession(ctx context.Context, cmd *cobra.Command, path, projectName string) (*session.Session, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: input %s is empty", pipeline.ErrNoDocument, path)
	}

	s := session.NewManager(session.NewMemoryStore()).Get(session.DefaultID)
	doc := session.NewDocument(string(data), projectName, time.Now())
	if err := s.SetDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrStore, err)
	}
	Log.Debug().Str("path", path).Str("document_id", doc.ID).Msg("Loaded document from input")
	return s, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial PDF.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".reqsmith-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into %s: %w", path, err)
	}
	return nil
}

// commandContext returns the command's context, or Background when a runner
// is invoked directly without cobra.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
