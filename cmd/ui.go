package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorMuted   = lipgloss.Color("#565f89")
)

// styles renders for one writer, so redirected output carries no escape codes.
type styles struct {
	heading lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Foreground(colorPrimary).Bold(true),
		success: r.NewStyle().Foreground(colorSuccess),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}
