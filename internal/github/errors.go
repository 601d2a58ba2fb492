package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const permissionDeniedMarker = "resource not accessible by"

// PermissionDeniedError means the token is valid but lacks write access to the
// repository. It is the most common actionable failure, so its message tells
// the user exactly what to do.
type PermissionDeniedError struct {
	Status int
	Detail string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied (%d): %s. The token cannot write to this repository: "+
		"create a new token with the \"repo\" scope (fine-grained tokens need Contents: read and write) "+
		"and save it in the sync settings", e.Status, e.Detail)
}

// RequestError is any other non-2xx reply from the API.
type RequestError struct {
	Method   string
	Endpoint string
	Status   int
	Detail   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("GitHub API error %d on %s %s: %s", e.Status, e.Method, e.Endpoint, e.Detail)
}

func (e *RequestError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// EmptyRepository reports the "repository has no commits yet" precondition.
// The git data API answers 409 for it; the contents API answers 404 with a
// "This repository is empty." message.
func (e *RequestError) EmptyRepository() bool {
	if e.Status == http.StatusConflict {
		return true
	}
	return strings.Contains(strings.ToLower(e.Detail), "repository is empty")
}

// NetworkError wraps a transport failure: DNS, TLS, refused connection, offline.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network unavailable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsMissing reports whether err means the requested object or branch does not
// exist yet, either because it was never created or the repository is empty.
func IsMissing(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.NotFound() || reqErr.EmptyRepository()
}

func IsPermissionDenied(err error) bool {
	var permErr *PermissionDeniedError
	return errors.As(err, &permErr)
}

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
