package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/karolswdev/reqsmith/internal/config"
	"github.com/karolswdev/reqsmith/internal/export"
	"github.com/karolswdev/reqsmith/internal/llm"
	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/session"
)

// newTestProvider builds a Provider over in-memory services. Pass an untyped
// nil filer to leave ticket filing disabled.
func newTestProvider(t *testing.T, client llm.Client, filer pipeline.TicketFiler) *Provider {
	t.Helper()
	exporter, err := export.NewExporter(export.Options{})
	require.NoError(t, err)
	return &Provider{
		AppConfig: &config.AppConfig{
			LLM:     config.LLMConfig{Provider: config.ProviderMock},
			Tracker: config.TrackerConfig{Enabled: filer != nil, IssueType: "Task"},
			Export:  config.ExportConfig{Filename: export.DefaultFilename},
			Session: config.SessionConfig{Backend: config.BackendMemory},
		},
		LLM:      client,
		Tracker:  filer,
		Exporter: exporter,
		Sessions: session.NewManager(session.NewMemoryStore()),
	}
}

// useProvider makes every command in the test run against p.
func useProvider(t *testing.T, p *Provider) {
	t.Helper()
	orig := newProvider
	newProvider = func() (*Provider, error) { return p, nil }
	t.Cleanup(func() { newProvider = orig })
}

// useConfigDeps does the same for the config command group.
func useConfigDeps(t *testing.T, cp ConfigProvider, kc KeyringClient) {
	t.Helper()
	orig := newConfigDeps
	newConfigDeps = func() (ConfigProvider, KeyringClient) { return cp, kc }
	t.Cleanup(func() { newConfigDeps = orig })
}

// executeCommand runs a fresh root command in-process and captures its output.
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}
