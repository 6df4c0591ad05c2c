package client

import "errors"

// Transport failures. A well-formed envelope with a refusing responseCode is
// not an error; it is returned as a Response for the caller to interpret.
var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnexpectedStatus  = errors.New("unexpected http status")
	ErrMalformedResponse = errors.New("malformed response")
)
