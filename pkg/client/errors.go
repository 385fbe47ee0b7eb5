package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies APIError for programmatic branching. Every kind
// is fatal to the in-flight retrieval; there is no internal recovery.
type ErrorKind string

const (
	// ErrorKindTransport marks non-2xx HTTP statuses and undeliverable
	// requests. Code carries the HTTP status where one exists.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindDecode marks response bodies that could not be parsed.
	ErrorKindDecode ErrorKind = "decode"

	// ErrorKindUpstream marks parseable responses carrying an
	// application-level error field.
	ErrorKindUpstream ErrorKind = "upstream"

	// ErrorKindEmpty marks an empty result set on the first page of a
	// batch. Legitimate "no data" for counting, fatal for accumulation.
	ErrorKindEmpty ErrorKind = "empty"

	// ErrorKindCeiling marks a declared page count above the configured
	// ceiling. Not retryable; narrow the query or raise the ceiling.
	ErrorKindCeiling ErrorKind = "ceiling"

	// ErrorKindConsistency marks hit-count drift between pages or a
	// collected-vs-declared mismatch after all batches.
	ErrorKindConsistency ErrorKind = "consistency"

	// ErrorKindProtocol marks a client/server schema mismatch, e.g. a
	// record kind the projection engine does not know.
	ErrorKindProtocol ErrorKind = "protocol"

	// ErrorKindConfig marks missing credentials or malformed field
	// specifications, detected before any request is made.
	ErrorKindConfig ErrorKind = "config"
)

// statusTexts gives human-readable names to the error codes the MPDS
// platform is known to return.
var statusTexts = map[int]string{
	204: "No Results",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Unauthorized (Payment Required)",
	403: "Forbidden",
	404: "Not Found",
	413: "Too Much Data Given",
	429: "Too Many Requests (Rate Limiting)",
	500: "Internal Server Error",
	501: "Not Implemented",
	503: "Service Unavailable",
}

// APIError is the single error value surfaced by all client
// operations. Code is an HTTP status where one applies, 2 for the
// page-count ceiling, 0 otherwise.
type APIError struct {
	Message string
	Code    int
	Kind    ErrorKind
	Err     error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code == 0 {
		return e.Message
	}
	text, ok := statusTexts[e.Code]
	if !ok {
		text = "Communication Error"
	}
	return fmt.Sprintf("HTTP error code %d: %s (%s)", e.Code, text, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsEmpty reports whether err is the empty-result outcome.
func IsEmpty(err error) bool {
	return hasKind(err, ErrorKindEmpty)
}

// IsConsistency reports whether err is a consistency violation.
func IsConsistency(err error) bool {
	return hasKind(err, ErrorKindConsistency)
}

func hasKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
