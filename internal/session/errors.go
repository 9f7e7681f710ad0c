package session

import "errors"

// ErrNotFound indicates no document has been generated for the session yet.
var ErrNotFound = errors.New("no generated document for session")

// ErrStale indicates the stored document changed between read and update.
var ErrStale = errors.New("stored document was replaced")

// ErrStoreUnavailable indicates the backing store could not be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrEncode indicates a document could not be serialized or deserialized.
var ErrEncode = errors.New("failed to encode session document")
