package main

import (
	"errors"
	"fmt"

	"orderly-client/internal/core"
	"orderly-client/internal/exchange/orderly"
)

// describeRequestError turns a joined request error into one readable line.
func describeRequestError(err error) error {
	reqErr, ok := orderly.AsRequestError(err)
	if !ok {
		return err
	}
	switch {
	case orderly.IsUnauthorized(err):
		return fmt.Errorf("unauthorized: %s (check account id, key registration and clock)", reqErr.Message)
	case orderly.IsRateLimited(err):
		return fmt.Errorf("rate limited: %s", reqErr.Message)
	case errors.Is(err, core.ErrNotFound):
		return fmt.Errorf("not found: %s", reqErr.Message)
	}
	return fmt.Errorf("request failed: %s", reqErr.Message)
}

func closeEnv(e *env) {
	if err := e.close(); err != nil {
		log.Warnw("shutdown", "err", err)
	}
}
