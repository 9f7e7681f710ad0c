// Package pipeline runs the generate, export and file-ticket actions against
// one session's stored document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/karolswdev/reqsmith/internal/export"
	"github.com/karolswdev/reqsmith/internal/llm"
	"github.com/karolswdev/reqsmith/internal/project"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

// TicketFiler creates one issue per call.
type TicketFiler interface {
	CreateIssue(ctx context.Context, summary, description string) (*tracker.TicketResult, error)
}

// Pipeline wires the completion client, exporter and ticket filer together.
type Pipeline struct {
	llm      llm.Client
	exporter *export.Exporter
	filer    TicketFiler
	limiter  *rate.Limiter
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGenerateLimit caps generations per minute across all sessions. A
// request over the limit fails immediately with ErrRateLimited. Zero or less
// disables the limit.
func WithGenerateLimit(perMinute int) Option {
	return func(p *Pipeline) {
		if perMinute <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithClock overrides the time source used to stamp documents.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline. filer may be nil, in which case FileTicket returns
// ErrTrackerDisabled.
func New(client llm.Client, exporter *export.Exporter, filer TicketFiler, opts ...Option) (*Pipeline, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: completion client", ErrMissingDependency)
	}
	if exporter == nil {
		return nil, fmt.Errorf("%w: exporter", ErrMissingDependency)
	}
	p := &Pipeline{
		llm:      client,
		exporter: exporter,
		filer:    filer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// TrackerEnabled reports whether a ticket filer is configured.
func (p *Pipeline) TrackerEnabled() bool {
	return p.filer != nil
}

// Generation is an in-flight completion request. Wait is its only join point.
type Generation struct {
	done chan struct{}
	doc  *session.Document
	err  error
}

// Wait blocks until the generation finishes or ctx is done. On success the
// document has already replaced the session's previous one.
func (g *Generation) Wait(ctx context.Context) (*session.Document, error) {
	select {
	case <-g.done:
		return g.doc, g.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StartGeneration builds the prompt for req and sends it to the completion
// client in the background. The session stays busy until the call returns.
// On failure the stored document is left as it was.
func (p *Pipeline) StartGeneration(ctx context.Context, s *session.Session, req project.Request) (*Generation, error) {
	req, err := req.Canonical()
	if err != nil {
		return nil, err
	}
	if !s.TryAcquire() {
		return nil, ErrBusy
	}
	if p.limiter != nil && !p.limiter.Allow() {
		s.Release()
		return nil, ErrRateLimited
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		log.Warn().Str("session_id", s.ID).Msg("Project name or description is empty; generating anyway")
	}

	prompt := llm.BuildPrompt(req)
	log.Debug().Str("session_id", s.ID).Int("prompt_length", len(prompt)).Msg("Starting generation")

	g := &Generation{done: make(chan struct{})}
	go func() {
		defer close(g.done)
		defer s.Release()

		text, err := p.llm.Complete(ctx, prompt)
		if err != nil {
			log.Error().Err(err).Str("session_id", s.ID).Msg("Completion request failed")
			g.err = err
			return
		}

		if err := ctx.Err(); err != nil {
			// The caller gave up; a late reply must not replace the stored document.
			log.Warn().Err(err).Str("session_id", s.ID).Msg("Discarding completion for cancelled request")
			g.err = err
			return
		}

		doc := session.NewDocument(text, req.Name, p.now())
		if err := s.SetDocument(ctx, doc); err != nil {
			log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to store generated document")
			g.err = fmt.Errorf("%w: %w", ErrStore, err)
			return
		}
		log.Info().Str("session_id", s.ID).Str("document_id", doc.ID).Int("length", len(text)).Msg("Requirements generated")
		g.doc = &doc
	}()
	return g, nil
}

// Generate runs a generation to completion.
func (p *Pipeline) Generate(ctx context.Context, s *session.Session, req project.Request) (*session.Document, error) {
	g, err := p.StartGeneration(ctx, s, req)
	if err != nil {
		return nil, err
	}
	return g.Wait(ctx)
}

// Document returns the session's current document or ErrNoDocument.
func (p *Pipeline) Document(ctx context.Context, s *session.Session) (*session.Document, error) {
	doc, err := s.Document(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return doc, nil
}

// Export renders the current document. Every call renders afresh.
func (p *Pipeline) Export(ctx context.Context, s *session.Session) (*export.File, error) {
	doc, err := p.Document(ctx, s)
	if err != nil {
		return nil, err
	}
	file, err := p.exporter.Export(*doc)
	if err != nil {
		return nil, err
	}
	if file.Substituted > 0 {
		log.Info().Str("document_id", doc.ID).Int("substituted", file.Substituted).Msg("Replaced characters the export charset cannot represent")
	}
	return file, nil
}

// FileTicket files the current document as one ticket. If a ticket was
// already filed for this document and force is false, the recorded key is
// returned with AlreadyFiled set and the tracker is not called.
func (p *Pipeline) FileTicket(ctx context.Context, s *session.Session, summary string, force bool) (*tracker.TicketResult, error) {
	if !s.TryAcquire() {
		return nil, ErrBusy
	}
	defer s.Release()

	doc, err := p.Document(ctx, s)
	if err != nil {
		return nil, err
	}
	if p.filer == nil {
		return nil, ErrTrackerDisabled
	}
	if doc.TicketKey != "" && !force {
		log.Info().Str("document_id", doc.ID).Str("issue_key", doc.TicketKey).Msg("Ticket already filed for this document")
		return &tracker.TicketResult{Key: doc.TicketKey, AlreadyFiled: true}, nil
	}

	result, err := p.filer.CreateIssue(ctx, TicketSummary(summary, doc.ProjectName), doc.Text)
	if err != nil {
		log.Error().Err(err).Str("document_id", doc.ID).Msg("Ticket filing failed")
		return nil, err
	}

	if err := s.MarkFiled(ctx, doc.ID, result.Key); err != nil {
		// The ticket exists either way; only the duplicate guard is lost.
		log.Warn().Err(err).Str("document_id", doc.ID).Str("issue_key", result.Key).Msg("Could not record ticket key on document")
	}
	return result, nil
}

// TicketSummary returns summary, or a default derived from the project name.
func TicketSummary(summary, projectName string) string {
	if s := strings.TrimSpace(summary); s != "" {
		return s
	}
	if name := strings.TrimSpace(projectName); name != "" {
		return "Requirements: " + name
	}
	return "Generated requirements"
}
