//go:build integration

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/reqsmith/internal/config"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

const checkoutRequirements = `User Stories:
1. As a shopper, I want to pay on a single page so that checkout is faster.
2. As a shopper, I want saved addresses so that I type less.
3. As a store owner, I want fewer abandoned carts so that revenue grows.

Acceptance Criteria:
Given a cart with items, When the shopper pays, Then the order is confirmed.

BRD Summary: Replace the multi-step checkout with a one-page flow.`

// TestCheckoutRevampWorkflow covers generate, export and ticket as separate
// invocations sharing one redis-backed session.
func TestCheckoutRevampWorkflow(t *testing.T) {
	llm := newFakeOpenAI(t, checkoutRequirements)
	jira := newFakeJira(t, "SAM1")
	env := setupTestEnvironment(t, llm.URL, jira.URL)

	t.Run("generate", func(t *testing.T) {
		stdout, stderr, err := executeCommand(t, "generate",
			"--name", "Checkout Revamp",
			"--description", "One-page checkout for the web store",
			"--industry", "Retail",
			"--methodology", "Scrum",
			"--technology", "Web App + Cloud Backend",
		)
		require.NoError(t, err, "generate failed: %s", stderr)
		assert.Contains(t, stdout, checkoutRequirements)

		prompts := llm.Prompts()
		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], "Project Name: Checkout Revamp")
		assert.Contains(t, prompts[0], "Industry: Retail")
		assert.Contains(t, prompts[0], "Given/When/Then")
	})

	t.Run("export", func(t *testing.T) {
		pdfPath := filepath.Join(env.WorkDir, "requirements.pdf")
		stdout, stderr, err := executeCommand(t, "export", "-f", pdfPath)
		require.NoError(t, err, "export failed: %s", stderr)
		assert.Contains(t, stdout, "PDF written to "+pdfPath)

		data, err := os.ReadFile(pdfPath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	})

	t.Run("ticket", func(t *testing.T) {
		stdout, stderr, err := executeCommand(t, "ticket", "-o", "json")
		require.NoError(t, err, "ticket failed: %s", stderr)

		var result tracker.TicketResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &result))
		assert.Equal(t, "SAM1-1", result.Key)

		issues := jira.Issues()
		require.Len(t, issues, 1)
		assert.Equal(t, "SAM1", issues[0].Project)
		assert.Equal(t, "Task", issues[0].IssueType)
		assert.Equal(t, "Requirements: Checkout Revamp", issues[0].Summary)
		assert.Equal(t, checkoutRequirements, issues[0].Body)
		assert.Equal(t, "pm@example.com", issues[0].User)
	})

	t.Run("ticket again is not duplicated", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "ticket")
		require.NoError(t, err)
		assert.Contains(t, stdout, "already filed for this document: SAM1-1")
		assert.Len(t, jira.Issues(), 1)
	})

	t.Run("regenerate resets the guard", func(t *testing.T) {
		_, stderr, err := executeCommand(t, "generate", "--name", "Checkout Revamp", "--industry", "Retail", "--ticket")
		require.NoError(t, err, "generate --ticket failed: %s", stderr)
		assert.Len(t, jira.Issues(), 2)
		assert.Len(t, llm.Prompts(), 2)
	})
}

func TestConfigWorkflow(t *testing.T) {
	setupTestEnvironment(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	emptyDir := t.TempDir()
	t.Setenv(config.ConfigDirEnvVar, emptyDir)

	t.Run("config init", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "config", "init")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Configuration directory and default files ensured.")
		assert.FileExists(t, filepath.Join(emptyDir, "config.yaml"))
		assert.FileExists(t, filepath.Join(emptyDir, ".env.example"))
	})

	t.Run("config locate", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "config", "locate")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Configuration directory: "+emptyDir)
	})

	t.Run("config set-secret and show", func(t *testing.T) {
		t.Setenv("JIRA_API_TOKEN", "")
		_, _, err := executeCommand(t, "config", "set-secret", "JIRA_API_TOKEN", "from-keyring")
		require.NoError(t, err)

		stdout, _, err := executeCommand(t, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, stdout, "JIRA_API_TOKEN:   set")
		assert.NotContains(t, stdout, "from-keyring")
	})
}
