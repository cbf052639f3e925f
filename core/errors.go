package core

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the classes of failure the Discord API can produce.
// Every error returned by the discord client wraps exactly one of them.
var (
	// ErrAuth means the token was rejected. Fatal: the whole run stops.
	ErrAuth = errors.New("authentication token is invalid")
	// ErrPermission means a precondition for correct results cannot hold. Fatal.
	ErrPermission = errors.New("missing permission")
	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned for 403 responses
	ErrForbidden = errors.New("forbidden")
	// ErrServer covers every other non-success status
	ErrServer = errors.New("server error")
)

// RequestError describes a non-success response from the API
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error // One of the sentinel errors above
}

func (e *RequestError) Error() string {
	if e.Body != "" && errors.Is(e.Err, ErrServer) {
		return fmt.Sprintf("request %s %s failed with status %d: %v\nresponse content: %s",
			e.Method, e.Path, e.StatusCode, e.Err, e.Body)
	}
	return fmt.Sprintf("request %s %s failed: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// AsRequestError checks if an error carries a RequestError
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// PermissionError is raised proactively when the results of an operation would silently be wrong
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return e.Reason
}

func (e *PermissionError) Unwrap() error {
	return ErrPermission
}

// IsFatal reports whether err must abort the entire run
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrPermission)
}

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbiddenError checks if an error is a "forbidden" error
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsAbsent reports whether err only signals that a resource is not visible to the caller
func IsAbsent(err error) bool {
	return IsNotFoundError(err) || IsForbiddenError(err)
}

// IsCancellation reports whether err was produced by a cancelled or expired context
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
