package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = openai.GPT4oMini

// Client sends one prompt to a chat-completion model and returns the text of
// the first choice.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient implements Client for the OpenAI chat completions API.
type OpenAIClient struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIClient creates a new OpenAI client wrapper.
// It requires a configured go-openai client and the model name to use.
func NewOpenAIClient(client *openai.Client, modelName string) (*OpenAIClient, error) {
	if client == nil {
		return nil, ErrLLMClientNil
	}
	if modelName == "" {
		log.Warn().Msgf("modelName is empty for OpenAIClient, defaulting to %s", DefaultModel)
		modelName = DefaultModel
	}
	return &OpenAIClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// ModelName returns the model identifier sent with every request.
func (o *OpenAIClient) ModelName() string {
	return o.modelName
}

// Complete sends prompt as the single user message of a new conversation and
// returns the first choice's content unmodified. It makes exactly one attempt.
func (o *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if o.client == nil {
		return "", ErrLLMClientNil
	}
	if prompt == "" {
		return "", ErrLLMPromptEmpty
	}

	req := openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	log.Debug().Str("model", o.modelName).Int("prompt_bytes", len(prompt)).Msg("Sending request to OpenAI API")
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("model", o.modelName).Msg("OpenAI API call failed")
		return "", classifyAPIError(err)
	}

	if len(resp.Choices) == 0 {
		log.Error().Msg("Received an empty response (no choices) from OpenAI")
		return "", ErrLLMEmptyResponse
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		log.Error().Str("finish_reason", string(resp.Choices[0].FinishReason)).Msg("First choice has no content")
		return "", ErrLLMEmptyResponse
	}

	log.Info().Str("model", o.modelName).Int("completion_tokens", resp.Usage.CompletionTokens).Msg("Received completion from OpenAI")
	return content, nil
}

// classifyAPIError wraps err with ErrLLMCompletion and, when the HTTP status
// is known, with a more specific sentinel.
func classifyAPIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w: %w", ErrLLMCompletion, ErrLLMUnauthorized, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %w", ErrLLMCompletion, ErrLLMRateLimited, err)
	default:
		return fmt.Errorf("%w: %w", ErrLLMCompletion, err)
	}
}
