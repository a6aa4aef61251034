package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested catalog item does not exist
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrUpstreamStatus indicates the upstream API answered with a non-2xx status
	ErrUpstreamStatus = errors.New("upstream returned an error status")

	// ErrMalformedResponse indicates the upstream payload is missing required fields
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrRemoteNotFound indicates no remote with the given name is registered
	ErrRemoteNotFound = errors.New("remote not registered")

	// ErrRemoteUnavailable indicates a remote entry could not be retrieved
	ErrRemoteUnavailable = errors.New("remote entry unavailable")
)
