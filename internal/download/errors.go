package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrNoURL is returned when the request has no media URL.
	ErrNoURL = errors.New("no media url")

	// ErrBadStatus is returned when the media server answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected http status")

	// ErrInvalidTransition is returned when a job is moved to a state it cannot reach.
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// writeError marks a failure writing the cache file, as opposed to reading
// the response body.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }
