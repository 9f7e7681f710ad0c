package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/karolswdev/reqsmith/internal/config"
	"github.com/karolswdev/reqsmith/internal/export"
	"github.com/karolswdev/reqsmith/internal/llm"
	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/project"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

// printErrorHint explains a failed action on w. The error itself is still
// returned to cobra by the caller.
func printErrorHint(w io.Writer, err error) {
	switch {
	case errors.Is(err, config.ErrSecretNotFound):
		fmt.Fprintf(w, "Error: %v\n", err)
		fmt.Fprintln(w, "Store it with 'reqsmith config set-secret NAME VALUE', export it, or add it to a .env file.")
	case errors.Is(err, config.ErrKeyringGet):
		fmt.Fprintf(w, "Error reading the OS keyring: %v\n", err)
		fmt.Fprintln(w, "Set the secret as an environment variable instead.")
	case errors.Is(err, config.ErrUnknownSecret):
		fmt.Fprintf(w, "Error: %v\n", err)
	case errors.Is(err, config.ErrKeyringSet):
		fmt.Fprintf(w, "Error writing to the OS keyring: %v\n", err)
		fmt.Fprintln(w, "Export the secret or add it to a .env file instead.")
	case errors.Is(err, config.ErrConfigRead), errors.Is(err, config.ErrConfigParse), errors.Is(err, config.ErrConfigInvalid):
		fmt.Fprintf(w, "Error in config.yaml: %v\n", err)
		fmt.Fprintln(w, "Check its format, or run 'reqsmith config init' to create a default.")
	case errors.Is(err, config.ErrConfigDirCreate), errors.Is(err, config.ErrConfigDirStat), errors.Is(err, config.ErrConfigDirNotDir):
		fmt.Fprintln(w, "Error accessing the configuration directory. Please check permissions.")
	case errors.Is(err, project.ErrUnknownOption):
		fmt.Fprintf(w, "Error: %v\n", err)
		fmt.Fprintln(w, "Run 'reqsmith options' to list the accepted values.")
	case errors.Is(err, pipeline.ErrBusy):
		fmt.Fprintln(w, "Another request is still running for this session.")
	case errors.Is(err, pipeline.ErrRateLimited):
		fmt.Fprintln(w, "Too many generation requests. Try again in a minute.")
	case errors.Is(err, pipeline.ErrNoDocument):
		fmt.Fprintln(w, "Nothing has been generated yet.")
		fmt.Fprintln(w, "Run 'reqsmith generate' (with --pdf or --ticket), pass --input FILE, or use the redis session backend.")
	case errors.Is(err, pipeline.ErrTrackerDisabled):
		fmt.Fprintln(w, "Ticket filing is disabled. Set 'tracker.enabled: true' in config.yaml.")
	case errors.Is(err, llm.ErrLLMUnauthorized):
		fmt.Fprintln(w, "The completion service rejected the API key. Check OPENAI_API_KEY ('reqsmith config show').")
	case errors.Is(err, llm.ErrLLMRateLimited):
		fmt.Fprintln(w, "The completion service is rate limiting requests. Try again later.")
	case errors.Is(err, llm.ErrLLMEmptyResponse):
		fmt.Fprintln(w, "The completion service returned no text. Nothing was stored.")
	case errors.Is(err, llm.ErrLLMCompletion):
		fmt.Fprintf(w, "Error communicating with the completion API: %v\n", err)
		fmt.Fprintln(w, "Please check your network connection and 'llm.openai.base_url'.")
	case errors.Is(err, tracker.ErrUnauthorized):
		fmt.Fprintln(w, "Jira rejected the credentials. Check JIRA_EMAIL and JIRA_API_TOKEN.")
	case errors.Is(err, tracker.ErrServerURLMissing), errors.Is(err, tracker.ErrServerURLParse),
		errors.Is(err, tracker.ErrCredentialsMissing), errors.Is(err, tracker.ErrProjectKeyMissing):
		fmt.Fprintf(w, "Jira is not configured: %v\n", err)
	case errors.Is(err, tracker.ErrRequestExecute):
		fmt.Fprintf(w, "Error connecting to Jira: %v\n", err)
		fmt.Fprintln(w, "Please check JIRA_SERVER and your network connection.")
	case errors.Is(err, tracker.ErrTrackerError), errors.Is(err, tracker.ErrResponseDecode):
		fmt.Fprintf(w, "Jira returned an error: %v\n", err)
	case errors.Is(err, export.ErrRender):
		fmt.Fprintf(w, "Failed to render the PDF: %v\n", err)
	case errors.Is(err, session.ErrStoreUnavailable), errors.Is(err, pipeline.ErrStore):
		fmt.Fprintf(w, "The session store is unavailable: %v\n", err)
		fmt.Fprintln(w, "Check 'session.redis_addr' or switch 'session.backend' to memory.")
	default:
		fmt.Fprintf(w, "An unexpected error occurred: %v\n", err)
	}
}
