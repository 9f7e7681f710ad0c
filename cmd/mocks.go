package cmd

// This file contains mock implementations used across different test files
// within the cmd package, but which need to be accessible from outside
// _test.go files (e.g., for integration tests).

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/karolswdev/reqsmith/internal/tracker"
)

// --- Mock LLMClient ---

// MockLLMClient is a mock implementation of the llm.Client interface.
type MockLLMClient struct {
	mock.Mock
}

// Complete matches llm.Client interface
func (m *MockLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- Mock TicketFiler ---

// MockTicketFiler is a mock implementation of the pipeline.TicketFiler interface.
type MockTicketFiler struct {
	mock.Mock
}

// CreateIssue matches pipeline.TicketFiler interface
func (m *MockTicketFiler) CreateIssue(ctx context.Context, summary, description string) (*tracker.TicketResult, error) {
	args := m.Called(ctx, summary, description)
	resp, _ := args.Get(0).(*tracker.TicketResult)
	return resp, args.Error(1)
}
