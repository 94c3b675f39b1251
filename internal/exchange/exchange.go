package exchange

import (
	"context"
	"encoding/json"

	"orderly-client/internal/core"
)

// Caller issues one signed request and returns the response envelope's data.
type Caller interface {
	Call(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

type AccountReader interface {
	Snapshot(ctx context.Context) (core.AccountSnapshot, error)
}

type MarketReader interface {
	Futures(ctx context.Context) ([]core.FuturesRow, error)
}
