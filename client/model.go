package client

import (
	"errors"
	"fmt"

	"github.com/adamwoolhether/pacer/client/throttle"
)

const (
	// maxErrBodySize caps how much of an unexpected response is kept in
	// the returned error.
	maxErrBodySize = 4 << 10
	// maxDrainSize caps how much of a response is read only to reuse
	// the connection.
	maxDrainSize = 64 << 10
)

// UploadIDHeader carries the identifier generated for every upload.
const UploadIDHeader = throttle.IDHeader

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrUnsupportedMethod is returned by [NewRequest] for methods that do
	// not carry an upload body.
	ErrUnsupportedMethod = errors.New("unsupported upload method")
	// ErrInvalidURL is returned by [NewRequest] for targets that are not
	// absolute http or https URLs.
	ErrInvalidURL = errors.New("invalid upload url")
)

// UnexpectedStatusError reports an upload answered with a status other
// than the expected one. Body holds at most the first 4KB of the response.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}
