package canto

import "errors"

var (
	// ErrNotAuthorized is returned for 401 and 403 responses
	ErrNotAuthorized = errors.New("canto: not authorized")

	// ErrInvalidResponse is returned for other non 2xx responses and undecodable bodies
	ErrInvalidResponse = errors.New("canto: invalid response")

	// ErrTransport is returned when the request could not be sent or read
	ErrTransport = errors.New("canto: transport failure")
)

// ResponseError carries the status of a failed call
type ResponseError struct {
	Kind       error
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *ResponseError) Error() string {
	msg := e.Kind.Error() + ": " + e.Method + " " + e.Path
	if e.StatusCode > 0 {
		msg += " returned " + statusText(e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	return e.Kind
}
