package export

import "errors"

// ErrUnknownCharset indicates the configured single-byte charset is not supported.
var ErrUnknownCharset = errors.New("unsupported export charset")

// ErrInvalidSubstitute indicates the substitute is not a single printable ASCII character.
var ErrInvalidSubstitute = errors.New("substitute must be a single printable ASCII character")

// ErrRender indicates the PDF library failed to produce a document.
var ErrRender = errors.New("failed to render PDF")
