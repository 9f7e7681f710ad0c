package tracker

// DefaultIssueType is the issue type created when none is configured.
const DefaultIssueType = "Task"

// Config holds the connection and target settings for filing tickets.
type Config struct {
	ServerURL  string
	Email      string
	APIToken   string
	ProjectKey string
	IssueType  string
}

// TicketResult identifies a filed ticket.
type TicketResult struct {
	Key  string `json:"key" yaml:"key"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Self string `json:"self,omitempty" yaml:"self,omitempty"`
	// AlreadyFiled is set when the key was recorded earlier for the same document
	// and no new ticket was created.
	AlreadyFiled bool `json:"already_filed,omitempty" yaml:"already_filed,omitempty"`
}
