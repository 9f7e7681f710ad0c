package session

import (
	"time"

	"github.com/google/uuid"
)

// Document is the most recent generated text held for a session.
type Document struct {
	ID          string    `json:"id" yaml:"id"`
	Text        string    `json:"text" yaml:"text"`
	ProjectName string    `json:"project_name" yaml:"project_name"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	// TicketKey is the tracker issue already filed for this exact document.
	TicketKey string `json:"ticket_key,omitempty" yaml:"ticket_key,omitempty"`
}

// NewDocument wraps generated text in a Document with a fresh ID.
func NewDocument(text, projectName string, generatedAt time.Time) Document {
	return Document{
		ID:          uuid.New().String(),
		Text:        text,
		ProjectName: projectName,
		GeneratedAt: generatedAt.UTC(),
	}
}
