package llm

import "errors"

// Sentinel errors for the completion client.

// ErrLLMClientNil indicates the LLM client (e.g., OpenAI client) was nil when used.
var ErrLLMClientNil = errors.New("LLM client cannot be nil")

// ErrLLMPromptEmpty indicates the prompt provided to the LLM was empty.
var ErrLLMPromptEmpty = errors.New("prompt cannot be empty")

// ErrLLMCompletion indicates an error occurred during the LLM API call (e.g., network error, API error).
// The underlying error from the LLM SDK should be wrapped.
var ErrLLMCompletion = errors.New("failed to create LLM completion")

// ErrLLMUnauthorized indicates the API rejected the configured key (HTTP 401/403).
var ErrLLMUnauthorized = errors.New("LLM API rejected the credentials")

// ErrLLMRateLimited indicates the API refused the request because of rate limits or quota (HTTP 429).
var ErrLLMRateLimited = errors.New("LLM API rate limit exceeded")

// ErrLLMEmptyResponse indicates the LLM returned a response with no usable content (no choices or empty text).
var ErrLLMEmptyResponse = errors.New("received an empty response from LLM")
