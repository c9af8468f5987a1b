// Package apperr defines the user-facing error kinds shared by reelmate components.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can pick a message and decide on retry.
type Kind string

const (
	KindUnknown             Kind = "unknown"
	KindPermissionDenied    Kind = "permission_denied"
	KindNetworkFailure      Kind = "network_failure"
	KindImportFailure       Kind = "import_failure"
	KindDirectoryAccessLost Kind = "directory_access_lost"
	KindUnsupportedPlatform Kind = "unsupported_platform"
)

// Error carries a Kind along with the operation that failed.
type Error struct {
	Kind    Kind
	Op      string // e.g. "download", "extract", "status.list"
	Message string // human-readable, shown to the user as-is
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Kind, so sentinel-style checks
// like errors.Is(err, apperr.ErrPermissionDenied) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Retryable reports whether repeating the user action may succeed.
// Only network failures qualify.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetworkFailure
}

// Sentinels for errors.Is comparisons.
var (
	ErrPermissionDenied    = &Error{Kind: KindPermissionDenied}
	ErrNetworkFailure      = &Error{Kind: KindNetworkFailure}
	ErrImportFailure       = &Error{Kind: KindImportFailure}
	ErrDirectoryAccessLost = &Error{Kind: KindDirectoryAccessLost}
	ErrUnsupportedPlatform = &Error{Kind: KindUnsupportedPlatform}
)

// New builds an *Error.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an *Error around err. Returns nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}

// Verbatim is implemented by errors whose text comes from an outside party
// and must reach the user unchanged, whatever Kind wraps them.
type Verbatim interface {
	error
	VerbatimMessage() string
}

// UserMessage renders err for display. A Verbatim error anywhere in the
// chain wins over the Kind's generic text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var v Verbatim
	if errors.As(err, &v) {
		return v.VerbatimMessage()
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case KindPermissionDenied:
		return withDetail("Permission is required to save videos to the gallery.", e.Message)
	case KindNetworkFailure:
		return withDetail("Network error. Check the connection and try again.", e.Message)
	case KindImportFailure:
		return withDetail("Could not save the file to the gallery.", e.Message)
	case KindDirectoryAccessLost:
		return withDetail("Could not read the status folder. Reconnect it and try again.", e.Message)
	case KindUnsupportedPlatform:
		return withDetail("This feature is not available on this platform.", e.Message)
	default:
		return err.Error()
	}
}

func withDetail(base, detail string) string {
	if detail == "" {
		return base
	}
	return base + " (" + detail + ")"
}
