package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karolswdev/reqsmith/internal/project"
)

// optionsRunE prints the accepted option values in display order.
func optionsRunE(cmd *cobra.Command, out io.Writer) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	opts := project.AllOptions()
	if format != formatText {
		return writeStructured(out, format, opts)
	}

	st := newStyles(out)
	sections := []struct {
		title  string
		values []string
	}{
		{"Industries", labels(opts.Industries)},
		{"Methodologies", labels(opts.Methodologies)},
		{"Technologies", labels(opts.Technologies)},
	}
	for i, section := range sections {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, st.heading.Render(section.title))
		for n, v := range section.values {
			fmt.Fprintf(out, "  %d) %s\n", n+1, v)
		}
	}
	return nil
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the accepted industry, methodology and technology values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return optionsRunE(cmd, cmd.OutOrStdout())
		},
	}
}
