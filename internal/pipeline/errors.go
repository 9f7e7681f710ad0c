package pipeline

import "errors"

// ErrBusy indicates another generation or ticket call is outstanding for the session.
var ErrBusy = errors.New("an operation is already in progress for this session")

// ErrRateLimited indicates the local generation throttle rejected the request.
var ErrRateLimited = errors.New("too many generation requests, try again shortly")

// ErrNoDocument indicates nothing has been generated yet for the session.
var ErrNoDocument = errors.New("no requirements have been generated yet")

// ErrTrackerDisabled indicates no ticket filer is configured.
var ErrTrackerDisabled = errors.New("ticket filing is not configured")

// ErrStore indicates the output store failed to load or save the document.
var ErrStore = errors.New("output store failed")

// ErrMissingDependency indicates New was called without a required collaborator.
var ErrMissingDependency = errors.New("pipeline dependency is missing")
