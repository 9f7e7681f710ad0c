//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/karolswdev/reqsmith/cmd"
	"github.com/karolswdev/reqsmith/internal/config"
)

// fakeOpenAI serves /v1/chat/completions with a fixed reply and records prompts.
type fakeOpenAI struct {
	*httptest.Server
	mu      sync.Mutex
	prompts []string
	reply   string
}

func newFakeOpenAI(t *testing.T, reply string) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{reply: reply}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Messages[0].Content)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","model":%q,"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%q}}]}`,
			req.Model, f.reply)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeOpenAI) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// createdIssue is what the fake Jira received.
type createdIssue struct {
	Project   string
	IssueType string
	Summary   string
	Body      string
	User      string
}

// fakeJira accepts POST /rest/api/2/issue and numbers issues sequentially.
type fakeJira struct {
	*httptest.Server
	mu     sync.Mutex
	issues []createdIssue
}

func newFakeJira(t *testing.T, projectKey string) *fakeJira {
	t.Helper()
	f := &fakeJira{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/2/issue" {
			http.NotFound(w, r)
			return
		}
		user, _, ok := r.BasicAuth()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload struct {
			Fields struct {
				Project     struct{ Key string } `json:"project"`
				IssueType   struct{ Name string } `json:"issuetype"`
				Summary     string               `json:"summary"`
				Description string               `json:"description"`
			} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.issues = append(f.issues, createdIssue{
			Project:   payload.Fields.Project.Key,
			IssueType: payload.Fields.IssueType.Name,
			Summary:   payload.Fields.Summary,
			Body:      payload.Fields.Description,
			User:      user,
		})
		n := len(f.issues)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":"%d","key":"%s-%d","self":"%s/rest/api/2/issue/%d"}`, 10000+n, projectKey, n, f.URL, 10000+n)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeJira) Issues() []createdIssue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]createdIssue(nil), f.issues...)
}

// testEnv is an isolated configuration directory with secrets in the environment
// and a redis session store, so documents survive between commands.
type testEnv struct {
	ConfigDir string
	WorkDir   string
	Redis     *miniredis.Miniredis
}

func setupTestEnvironment(t *testing.T, llmURL, jiraURL string) *testEnv {
	t.Helper()
	keyring.MockInit()

	env := &testEnv{
		ConfigDir: t.TempDir(),
		WorkDir:   t.TempDir(),
		Redis:     miniredis.RunT(t),
	}

	configContent := fmt.Sprintf(`
llm:
  provider: openai
  openai:
    model_name: gpt-4o-mini
    base_url: "%s/v1"
tracker:
  enabled: true
  issue_type: Task
session:
  backend: redis
  redis_addr: "%s"
`, llmURL, env.Redis.Addr())
	err := os.WriteFile(filepath.Join(env.ConfigDir, config.DefaultConfigFileName), []byte(configContent), 0o600)
	require.NoError(t, err, "Failed to write temp config file")

	t.Setenv(config.ConfigDirEnvVar, env.ConfigDir)
	t.Setenv(config.SecretOpenAIAPIKey, "sk-integration")
	t.Setenv(config.SecretJiraServer, jiraURL)
	t.Setenv(config.SecretJiraEmail, "pm@example.com")
	t.Setenv(config.SecretJiraAPIToken, "jira-token")
	t.Setenv(config.SecretJiraProjectKey, "SAM1")
	return env
}

// executeCommand runs the reqsmith root command with args in-process and
// captures stdout and stderr.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	var outBuf, errBuf bytes.Buffer
	rootCmd := cmd.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(append([]string{"--log-level", "warn"}, args...))

	execErr := rootCmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), execErr
}
