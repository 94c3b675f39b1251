package orderly

import (
	"errors"
	"net/http"

	"orderly-client/internal/core"
)

const (
	apiCodeUnknownAccount   = -1001
	apiCodeInvalidSignature = -1002
	apiCodeTooManyRequests  = -1003
	apiCodeNotFound         = -1006
)

var apiCodeKinds = map[int]error{
	apiCodeUnknownAccount:   core.ErrUnauthorized,
	apiCodeInvalidSignature: core.ErrUnauthorized,
	apiCodeTooManyRequests:  core.ErrRateLimited,
	apiCodeNotFound:         core.ErrNotFound,
}

var statusKinds = map[int]error{
	http.StatusUnauthorized:    core.ErrUnauthorized,
	http.StatusTooManyRequests: core.ErrRateLimited,
	http.StatusNotFound:        core.ErrNotFound,
}

func classifyRequestError(reqErr *RequestError) error {
	kinds := requestErrorKinds(reqErr)
	if len(kinds) == 0 {
		return reqErr
	}
	errChain := make([]error, 0, 1+len(kinds))
	errChain = append(errChain, reqErr)
	errChain = append(errChain, kinds...)
	return errors.Join(errChain...)
}

func requestErrorKinds(reqErr *RequestError) []error {
	kinds := make([]error, 0, 2)
	if kind, ok := apiCodeKinds[reqErr.Code]; ok {
		kinds = appendErrorKind(kinds, kind)
	}
	if kind, ok := statusKinds[reqErr.StatusCode]; ok {
		kinds = appendErrorKind(kinds, kind)
	}
	return kinds
}

func appendErrorKind(kinds []error, kind error) []error {
	for _, existing := range kinds {
		if existing == kind {
			return kinds
		}
	}
	return append(kinds, kind)
}

func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if err == nil || !errors.As(err, &reqErr) {
		return nil, false
	}
	return reqErr, true
}

func IsAPICode(err error, codes ...int) bool {
	reqErr, ok := AsRequestError(err)
	if !ok {
		return false
	}
	for _, code := range codes {
		if reqErr.Code == code {
			return true
		}
	}
	return false
}

func IsUnauthorized(err error) bool { return errors.Is(err, core.ErrUnauthorized) }

func IsRateLimited(err error) bool { return errors.Is(err, core.ErrRateLimited) }
