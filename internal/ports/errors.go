package ports

import (
	"errors"
	"fmt"
)

// CallCategory distinguishes the ways an external completion call can fail.
type CallCategory string

const (
	CallTimeout          CallCategory = "timeout"
	CallConnectionFailed CallCategory = "connection_failed"
	CallTLSFailed        CallCategory = "tls_verification_failed"
	CallHTTPError        CallCategory = "http_error"
	CallBadResponse      CallCategory = "empty_or_malformed_response"
)

// CallError is the only error type that crosses the provider boundary.
// Transport errors are classified into a category before they reach callers.
type CallError struct {
	Category CallCategory
	Status   int    // set for CallHTTPError
	Body     string // response body for CallHTTPError, truncated
	Err      error
}

func (e *CallError) Error() string {
	switch e.Category {
	case CallHTTPError:
		return fmt.Sprintf("completion call failed: HTTP %d: %s", e.Status, e.Body)
	case CallTimeout:
		return "completion call timed out"
	case CallConnectionFailed:
		return fmt.Sprintf("completion endpoint unreachable: %v", e.Err)
	case CallTLSFailed:
		return fmt.Sprintf("completion endpoint certificate rejected: %v", e.Err)
	default:
		return fmt.Sprintf("completion response unusable: %v", e.Err)
	}
}

func (e *CallError) Unwrap() error { return e.Err }

// CategoryOf returns the call category of err, or "" when err is not a
// classified call error.
func CategoryOf(err error) CallCategory {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}
