package extractor

import "errors"

var (
	// ErrBlockedHost is returned for URLs the service must not be asked about.
	ErrBlockedHost = errors.New("links from this site are not supported")

	// ErrInvalidURL is returned when the input is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid video URL")
)

// ServiceError is a failure reported by the extraction service. Message is
// the service's own text and is shown to the user unchanged.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// VerbatimMessage marks the service text for display as-is.
func (e *ServiceError) VerbatimMessage() string {
	return e.Message
}
