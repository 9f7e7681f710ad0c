package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/rs/zerolog/log"
)

// Client files tickets in one Jira project using basic auth (email + API token).
type Client struct {
	jira       *jira.Client
	projectKey string
	issueType  string
}

// Validate reports the first missing or malformed setting.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return ErrServerURLMissing
	}
	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServerURLParse, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrServerURLParse, cfg.ServerURL)
	}
	if strings.TrimSpace(cfg.Email) == "" || strings.TrimSpace(cfg.APIToken) == "" {
		return ErrCredentialsMissing
	}
	if strings.TrimSpace(cfg.ProjectKey) == "" {
		return ErrProjectKeyMissing
	}
	return nil
}

// New creates a Client. base supplies the transport and timeout; nil uses
// the library defaults.
func New(cfg Config, base *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.IssueType == "" {
		cfg.IssueType = DefaultIssueType
	}

	tp := &jira.BasicAuthTransport{
		Username: cfg.Email,
		Password: cfg.APIToken,
	}
	httpClient := tp.Client()
	if base != nil {
		tp.Transport = base.Transport
		httpClient.Timeout = base.Timeout
	}

	jc, err := jira.NewClient(httpClient, cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientCreate, err)
	}

	return &Client{
		jira:       jc,
		projectKey: cfg.ProjectKey,
		issueType:  cfg.IssueType,
	}, nil
}

// ProjectKey returns the project tickets are filed in.
func (c *Client) ProjectKey() string {
	return c.projectKey
}

// CreateIssue creates one issue with the given summary and description and
// returns its key. Each call creates a new issue.
func (c *Client) CreateIssue(ctx context.Context, summary, description string) (*TicketResult, error) {
	issue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: c.projectKey},
			Type:        jira.IssueType{Name: c.issueType},
			Summary:     summary,
			Description: description,
		},
	}

	log.Debug().Str("project_key", c.projectKey).Str("issue_type", c.issueType).Str("summary", summary).Msg("Sending Jira CreateIssue request")
	created, resp, err := c.jira.Issue.CreateWithContext(ctx, issue)
	if err != nil {
		return nil, classifyError(resp, err)
	}
	if created == nil || created.Key == "" {
		return nil, fmt.Errorf("%w: response did not include an issue key", ErrResponseDecode)
	}

	log.Info().Str("issue_key", created.Key).Str("project_key", c.projectKey).Msg("Created Jira issue")
	return &TicketResult{Key: created.Key, ID: created.ID, Self: created.Self}, nil
}

func classifyError(resp *jira.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%w: %w", ErrRequestExecute, err)
	}

	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return fmt.Errorf("%w: %w", ErrResponseDecode, err)
	}

	// NewJiraError consumes the body and folds errorMessages/errors into the message.
	detailed := jira.NewJiraError(resp, err)
	log.Debug().Int("status_code", status).Err(detailed).Msg("Jira CreateIssue failed")

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, status)
	default:
		return fmt.Errorf("%w: %s (status %d)", ErrTrackerError, detailed.Error(), status)
	}
}
