package server

import (
	"errors"
	"net/http"

	"github.com/karolswdev/reqsmith/internal/config"
	"github.com/karolswdev/reqsmith/internal/llm"
	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/project"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

// errorResponse maps a pipeline error to an HTTP status and a message fit for
// the page banner. Earlier state is never affected by the error.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, project.ErrUnknownOption):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, pipeline.ErrBusy):
		return http.StatusConflict, "A request is already running for this session. Wait for it to finish."
	case errors.Is(err, pipeline.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many generation requests. Try again in a minute."
	case errors.Is(err, pipeline.ErrNoDocument):
		return http.StatusNotFound, "Nothing generated yet. Generate requirements first."
	case errors.Is(err, pipeline.ErrTrackerDisabled):
		return http.StatusServiceUnavailable, "Ticket filing is disabled in the configuration."
	case errors.Is(err, config.ErrSecretNotFound), errors.Is(err, config.ErrKeyringGet):
		return http.StatusServiceUnavailable, "Missing credentials: " + err.Error()
	case errors.Is(err, llm.ErrLLMUnauthorized):
		return http.StatusBadGateway, "The completion service rejected the API key. Check OPENAI_API_KEY."
	case errors.Is(err, llm.ErrLLMRateLimited):
		return http.StatusServiceUnavailable, "The completion service is rate limiting requests. Try again later."
	case errors.Is(err, llm.ErrLLMEmptyResponse):
		return http.StatusBadGateway, "The completion service returned no text."
	case errors.Is(err, llm.ErrLLMCompletion):
		return http.StatusBadGateway, "Completion request failed: " + err.Error()
	case errors.Is(err, tracker.ErrUnauthorized):
		return http.StatusBadGateway, "Jira rejected the credentials. Check JIRA_EMAIL and JIRA_API_TOKEN."
	case errors.Is(err, tracker.ErrServerURLMissing), errors.Is(err, tracker.ErrServerURLParse),
		errors.Is(err, tracker.ErrCredentialsMissing), errors.Is(err, tracker.ErrProjectKeyMissing):
		return http.StatusServiceUnavailable, "Jira is not configured: " + err.Error()
	case errors.Is(err, tracker.ErrRequestExecute), errors.Is(err, tracker.ErrTrackerError),
		errors.Is(err, tracker.ErrResponseDecode):
		return http.StatusBadGateway, "Ticket creation failed: " + err.Error()
	case errors.Is(err, session.ErrStoreUnavailable), errors.Is(err, pipeline.ErrStore):
		return http.StatusServiceUnavailable, "The session store is unavailable."
	default:
		return http.StatusInternalServerError, "Unexpected error: " + err.Error()
	}
}
