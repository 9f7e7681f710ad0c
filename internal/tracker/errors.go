package tracker

import "errors"

// Sentinel errors for issue tracker operations.

// ErrServerURLMissing indicates the Jira server URL is not configured.
var ErrServerURLMissing = errors.New("Jira server URL is not configured")

// ErrServerURLParse indicates the Jira server URL is not an absolute http(s) URL.
var ErrServerURLParse = errors.New("failed to parse Jira server URL")

// ErrCredentialsMissing indicates the Jira account email or API token is not configured.
var ErrCredentialsMissing = errors.New("Jira credentials are not configured")

// ErrProjectKeyMissing indicates the target Jira project key is not configured.
var ErrProjectKeyMissing = errors.New("Jira project key is not configured")

// ErrClientCreate indicates the Jira client could not be constructed.
var ErrClientCreate = errors.New("failed to create Jira client")

// ErrRequestExecute indicates the request never produced an HTTP response (network, DNS, TLS).
var ErrRequestExecute = errors.New("failed to execute Jira request")

// ErrUnauthorized indicates Jira rejected the credentials (HTTP 401/403).
var ErrUnauthorized = errors.New("Jira rejected the credentials")

// ErrTrackerError indicates Jira returned a non-2xx status. Jira's message and the status are wrapped.
var ErrTrackerError = errors.New("Jira returned an error")

// ErrResponseDecode indicates a 2xx response whose body did not describe a created issue.
var ErrResponseDecode = errors.New("failed to decode Jira response")
