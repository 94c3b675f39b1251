package core

import "errors"

var (
	// ErrRequestFailed indicates a transport error or an API failure envelope.
	ErrRequestFailed = errors.New("request failed")
	// ErrUnauthorized indicates the API rejected the account id, key or signature.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited indicates the API throttled the caller.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)
