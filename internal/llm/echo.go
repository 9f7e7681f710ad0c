package llm

import "context"

// EchoClient returns the prompt as the completion. It backs the "mock"
// provider so the pipeline can run without network access.
type EchoClient struct{}

func (EchoClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompt == "" {
		return "", ErrLLMPromptEmpty
	}
	return prompt, nil
}
