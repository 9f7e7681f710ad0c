package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/karolswdev/reqsmith/internal/export"
	"github.com/karolswdev/reqsmith/internal/llm"
	"github.com/karolswdev/reqsmith/internal/project"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

// stubLLM returns a fixed completion and records the prompts it saw.
type stubLLM struct {
	text    string
	err     error
	block   chan struct{}
	prompts []string
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type mockFiler struct {
	mock.Mock
}

func (m *mockFiler) CreateIssue(ctx context.Context, summary, description string) (*tracker.TicketResult, error) {
	args := m.Called(ctx, summary, description)
	res, _ := args.Get(0).(*tracker.TicketResult)
	return res, args.Error(1)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func checkoutRevamp(t *testing.T) project.Request {
	t.Helper()
	req, err := project.NewRequest("Checkout Revamp", "Add one-click checkout", "Retail", "Agile", "Web App + Cloud Backend")
	require.NoError(t, err)
	return req
}

func newTestPipeline(t *testing.T, client llm.Client, filer TicketFiler, opts ...Option) (*Pipeline, *session.Session) {
	t.Helper()
	exporter, err := export.NewExporter(export.Options{})
	require.NoError(t, err)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	p, err := New(client, exporter, filer, opts...)
	require.NoError(t, err)
	return p, session.NewManager(session.NewMemoryStore()).Get(session.DefaultID)
}

func TestNew_MissingDependencies(t *testing.T) {
	exporter, err := export.NewExporter(export.Options{})
	require.NoError(t, err)

	_, err = New(nil, exporter, nil)
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = New(&stubLLM{}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingDependency)

	p, err := New(&stubLLM{}, exporter, nil)
	require.NoError(t, err)
	assert.False(t, p.TrackerEnabled())
}

func TestGenerate_StoresCompletionVerbatim(t *testing.T) {
	client := &stubLLM{text: "STORY 1..."}
	p, s := newTestPipeline(t, client, nil)
	ctx := context.Background()

	doc, err := p.Generate(ctx, s, checkoutRevamp(t))
	require.NoError(t, err)
	assert.Equal(t, "STORY 1...", doc.Text)
	assert.Equal(t, "Checkout Revamp", doc.ProjectName)
	assert.Equal(t, fixedNow, doc.GeneratedAt)

	stored, err := p.Document(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "STORY 1...", stored.Text)
	assert.False(t, s.Busy(), "Session should be released after generation")

	require.Len(t, client.prompts, 1)
	assert.Equal(t, llm.BuildPrompt(checkoutRevamp(t)), client.prompts[0])
}

func TestGenerate_OverwritesPreviousDocument(t *testing.T) {
	client := &stubLLM{text: "first"}
	p, s := newTestPipeline(t, client, nil)
	ctx := context.Background()

	first, err := p.Generate(ctx, s, checkoutRevamp(t))
	require.NoError(t, err)

	client.text = "second"
	second, err := p.Generate(ctx, s, checkoutRevamp(t))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	stored, err := p.Document(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Text)
}

func TestGenerate_FailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()

	t.Run("no prior document", func(t *testing.T) {
		client := &stubLLM{err: llm.ErrLLMUnauthorized}
		p, s := newTestPipeline(t, client, nil)

		doc, err := p.Generate(ctx, s, checkoutRevamp(t))
		assert.ErrorIs(t, err, llm.ErrLLMUnauthorized)
		assert.Nil(t, doc)

		_, err = p.Document(ctx, s)
		assert.ErrorIs(t, err, ErrNoDocument)
		assert.False(t, s.Busy())
	})

	t.Run("prior document kept", func(t *testing.T) {
		client := &stubLLM{text: "STORY 1..."}
		p, s := newTestPipeline(t, client, nil)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)

		client.err = llm.ErrLLMRateLimited
		_, err = p.Generate(ctx, s, checkoutRevamp(t))
		assert.ErrorIs(t, err, llm.ErrLLMRateLimited)

		stored, err := p.Document(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, "STORY 1...", stored.Text)
	})
}

func TestGenerate_InvalidRequest(t *testing.T) {
	client := &stubLLM{text: "x"}
	p, s := newTestPipeline(t, client, nil)

	_, err := p.Generate(context.Background(), s, project.Request{Name: "n"})
	assert.ErrorIs(t, err, project.ErrUnknownOption)
	assert.Empty(t, client.prompts, "Completion client should not be called")
	assert.False(t, s.Busy())
}

func TestStartGeneration_BusyWhileOutstanding(t *testing.T) {
	client := &stubLLM{text: "STORY 1...", block: make(chan struct{})}
	filer := new(mockFiler)
	p, s := newTestPipeline(t, client, filer)
	ctx := context.Background()

	g, err := p.StartGeneration(ctx, s, checkoutRevamp(t))
	require.NoError(t, err)
	assert.True(t, s.Busy())

	_, err = p.StartGeneration(ctx, s, checkoutRevamp(t))
	assert.ErrorIs(t, err, ErrBusy)

	_, err = p.FileTicket(ctx, s, "", false)
	assert.ErrorIs(t, err, ErrBusy)

	close(client.block)
	doc, err := g.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "STORY 1...", doc.Text)
	assert.False(t, s.Busy())
	filer.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything, mock.Anything)
}

func TestGeneration_WaitHonorsContext(t *testing.T) {
	client := &stubLLM{text: "late", block: make(chan struct{})}
	p, s := newTestPipeline(t, client, nil)

	g, err := p.StartGeneration(context.Background(), s, checkoutRevamp(t))
	require.NoError(t, err)

	waitCtx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Wait(waitCtx)
	assert.ErrorIs(t, err, context.Canceled)

	close(client.block)
	doc, err := g.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", doc.Text)
}

func TestGenerate_CanonicalizesOptionSpelling(t *testing.T) {
	client := &stubLLM{text: "STORY 1..."}
	p, s := newTestPipeline(t, client, nil)
	req := project.Request{Name: "Ledger", Industry: "finance", Methodology: "waterfall", Technology: "sap"}

	_, err := p.Generate(context.Background(), s, req)

	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Methodology: Waterfall\n")
	assert.Contains(t, client.prompts[0], "numbered, verifiable conditions")
	assert.NotContains(t, client.prompts[0], "Given/When/Then")
}

// cancellingLLM succeeds but cancels the request context first, as when a
// browser disconnects while the reply is in flight.
type cancellingLLM struct {
	cancel context.CancelFunc
}

func (c *cancellingLLM) Complete(context.Context, string) (string, error) {
	c.cancel()
	return "too late", nil
}

func TestGeneration_CancelledRequestDoesNotStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, s := newTestPipeline(t, &cancellingLLM{cancel: cancel}, nil)
	require.NoError(t, s.SetDocument(context.Background(), session.NewDocument("previous", "Checkout Revamp", fixedNow)))

	g, err := p.StartGeneration(ctx, s, checkoutRevamp(t))
	require.NoError(t, err)
	_, err = g.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	doc, err := p.Document(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "previous", doc.Text)
	assert.False(t, s.Busy())
}

func TestGenerate_RateLimited(t *testing.T) {
	client := &stubLLM{text: "STORY 1..."}
	p, s := newTestPipeline(t, client, nil, WithGenerateLimit(1))
	ctx := context.Background()

	_, err := p.Generate(ctx, s, checkoutRevamp(t))
	require.NoError(t, err)

	_, err = p.Generate(ctx, s, checkoutRevamp(t))
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, s.Busy(), "Rejected request must not leave the session busy")
	assert.Len(t, client.prompts, 1)
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("no document", func(t *testing.T) {
		p, s := newTestPipeline(t, &stubLLM{}, nil)
		file, err := p.Export(ctx, s)
		assert.ErrorIs(t, err, ErrNoDocument)
		assert.Nil(t, file)
	})

	t.Run("renders fresh and identical each time", func(t *testing.T) {
		p, s := newTestPipeline(t, &stubLLM{text: "STORY 1..."}, nil)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)

		first, err := p.Export(ctx, s)
		require.NoError(t, err)
		second, err := p.Export(ctx, s)
		require.NoError(t, err)

		assert.Equal(t, export.DefaultFilename, first.Name)
		assert.Equal(t, export.DefaultMIMEType, first.MIMEType)
		assert.True(t, bytes.HasPrefix(first.Data, []byte("%PDF-")))
		assert.Equal(t, first.Data, second.Data)
	})
}

func TestFileTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tracker key and records it", func(t *testing.T) {
		filer := new(mockFiler)
		filer.On("CreateIssue", mock.Anything, "Requirements: Checkout Revamp", "STORY 1...").
			Return(&tracker.TicketResult{Key: "SAM1-42", ID: "10001"}, nil).Once()

		p, s := newTestPipeline(t, &stubLLM{text: "STORY 1..."}, filer)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)

		result, err := p.FileTicket(ctx, s, "", false)
		require.NoError(t, err)
		assert.Equal(t, "SAM1-42", result.Key)
		assert.False(t, result.AlreadyFiled)

		stored, err := p.Document(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, "SAM1-42", stored.TicketKey)
		filer.AssertExpectations(t)
	})

	t.Run("second filing returns recorded key", func(t *testing.T) {
		filer := new(mockFiler)
		filer.On("CreateIssue", mock.Anything, "Custom summary", "STORY 1...").
			Return(&tracker.TicketResult{Key: "SAM1-42"}, nil).Once()

		p, s := newTestPipeline(t, &stubLLM{text: "STORY 1..."}, filer)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)

		_, err = p.FileTicket(ctx, s, "Custom summary", false)
		require.NoError(t, err)

		again, err := p.FileTicket(ctx, s, "Custom summary", false)
		require.NoError(t, err)
		assert.Equal(t, "SAM1-42", again.Key)
		assert.True(t, again.AlreadyFiled)
		filer.AssertNumberOfCalls(t, "CreateIssue", 1)
	})

	t.Run("force files again", func(t *testing.T) {
		filer := new(mockFiler)
		filer.On("CreateIssue", mock.Anything, mock.Anything, mock.Anything).
			Return(&tracker.TicketResult{Key: "SAM1-42"}, nil).Once()
		filer.On("CreateIssue", mock.Anything, mock.Anything, mock.Anything).
			Return(&tracker.TicketResult{Key: "SAM1-43"}, nil).Once()

		p, s := newTestPipeline(t, &stubLLM{text: "STORY 1..."}, filer)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)

		_, err = p.FileTicket(ctx, s, "", false)
		require.NoError(t, err)
		forced, err := p.FileTicket(ctx, s, "", true)
		require.NoError(t, err)
		assert.Equal(t, "SAM1-43", forced.Key)
		assert.False(t, forced.AlreadyFiled)
		filer.AssertNumberOfCalls(t, "CreateIssue", 2)
	})

	t.Run("regeneration resets the guard", func(t *testing.T) {
		filer := new(mockFiler)
		filer.On("CreateIssue", mock.Anything, mock.Anything, "first").
			Return(&tracker.TicketResult{Key: "SAM1-1"}, nil).Once()
		filer.On("CreateIssue", mock.Anything, mock.Anything, "second").
			Return(&tracker.TicketResult{Key: "SAM1-2"}, nil).Once()

		client := &stubLLM{text: "first"}
		p, s := newTestPipeline(t, client, filer)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)
		_, err = p.FileTicket(ctx, s, "", false)
		require.NoError(t, err)

		client.text = "second"
		_, err = p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)
		result, err := p.FileTicket(ctx, s, "", false)
		require.NoError(t, err)
		assert.Equal(t, "SAM1-2", result.Key)
		filer.AssertExpectations(t)
	})

	t.Run("auth failure surfaces without a key", func(t *testing.T) {
		authErr := fmt.Errorf("%w (status 401)", tracker.ErrUnauthorized)
		filer := new(mockFiler)
		filer.On("CreateIssue", mock.Anything, mock.Anything, mock.Anything).Return(nil, authErr).Once()

		p, s := newTestPipeline(t, &stubLLM{text: "STORY 1..."}, filer)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)

		result, err := p.FileTicket(ctx, s, "", false)
		assert.ErrorIs(t, err, tracker.ErrUnauthorized)
		assert.Nil(t, result)

		stored, err := p.Document(ctx, s)
		require.NoError(t, err)
		assert.Empty(t, stored.TicketKey)
		assert.False(t, s.Busy())
	})

	t.Run("no document", func(t *testing.T) {
		filer := new(mockFiler)
		p, s := newTestPipeline(t, &stubLLM{}, filer)
		_, err := p.FileTicket(ctx, s, "", false)
		assert.ErrorIs(t, err, ErrNoDocument)
		filer.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("tracker disabled", func(t *testing.T) {
		p, s := newTestPipeline(t, &stubLLM{text: "STORY 1..."}, nil)
		_, err := p.Generate(ctx, s, checkoutRevamp(t))
		require.NoError(t, err)

		_, err = p.FileTicket(ctx, s, "", false)
		assert.ErrorIs(t, err, ErrTrackerDisabled)
	})
}

func TestTicketSummary(t *testing.T) {
	assert.Equal(t, "Custom", TicketSummary("  Custom ", "Checkout Revamp"))
	assert.Equal(t, "Requirements: Checkout Revamp", TicketSummary("", "Checkout Revamp"))
	assert.Equal(t, "Generated requirements", TicketSummary(" ", ""))
}

func TestCheckoutRevampEndToEnd(t *testing.T) {
	ctx := context.Background()
	req := checkoutRevamp(t)

	prompt := llm.BuildPrompt(req)
	for _, value := range []string{"Checkout Revamp", "Add one-click checkout", "Retail", "Agile", "Web App + Cloud Backend"} {
		assert.Contains(t, prompt, value)
	}
	for _, item := range []string{"1. ", "2. ", "3. ", "4. ", "5. "} {
		assert.Contains(t, prompt, "\n"+item)
	}

	filer := new(mockFiler)
	filer.On("CreateIssue", mock.Anything, "Requirements: Checkout Revamp", "STORY 1...").
		Return(&tracker.TicketResult{Key: "SAM1-42"}, nil).Once()
	p, s := newTestPipeline(t, &stubLLM{text: "STORY 1..."}, filer)

	doc, err := p.Generate(ctx, s, req)
	require.NoError(t, err)
	assert.Equal(t, "STORY 1...", doc.Text)

	file, err := p.Export(ctx, s)
	require.NoError(t, err)
	assert.NotEmpty(t, file.Data)

	result, err := p.FileTicket(ctx, s, "", false)
	require.NoError(t, err)
	assert.Equal(t, "SAM1-42", result.Key)
}
