package api

import "fmt"

// NetworkError means the request never reached the service or no response
// came back.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-2xx response. Message is taken from the response
// body's error field when present, otherwise from the HTTP status text.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
}

// ValidationError is a precondition failure detected locally, before any
// remote call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	remote, ok := err.(*RemoteError)
	return ok && remote.Status == 404
}

// IsUnauthorized reports whether err is a remote 401.
func IsUnauthorized(err error) bool {
	remote, ok := err.(*RemoteError)
	return ok && remote.Status == 401
}
