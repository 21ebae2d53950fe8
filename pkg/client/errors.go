// Package client is the Go SDK for the auction marketplace API: a thin
// HTTP client with one method per command, plus a persistent session that
// survives restarts via a local state file.
package client

import "fmt"

// ValidationError reports input the server rejected as malformed or out of
// range. The request is never retried.
type ValidationError struct {
	Message string
	Details map[string]any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// AuthorizationError reports a request made without valid credentials or
// with the wrong active role. Authenticated distinguishes the two: false
// means no valid session (401), true means the role is not allowed (403).
type AuthorizationError struct {
	Message       string
	Authenticated bool
}

func (e *AuthorizationError) Error() string {
	if e.Authenticated {
		return fmt.Sprintf("forbidden: %s", e.Message)
	}
	return fmt.Sprintf("not authenticated: %s", e.Message)
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ConflictError reports a command rejected because server state changed
// since the client last read it (auction no longer planned, lot already
// sold, bid tied or trailing).
type ConflictError struct {
	Message string
	Details map[string]any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Message)
}

// TransportError reports that no usable response arrived: connection
// failures, timeouts, undecodable bodies. The underlying cause is wrapped.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
