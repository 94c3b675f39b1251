package orderly

import (
	"context"
	"net/http"

	"orderly-client/internal/core"
)

const pathFutures = "/v1/public/futures"

// Futures returns the 24h statistics of every perpetual market.
func (c *Client) Futures(ctx context.Context) ([]core.FuturesRow, error) {
	data, err := c.Public(ctx, pathFutures)
	if err != nil {
		return nil, err
	}
	var out core.FuturesInfo
	if err := decodeData(http.MethodGet, pathFutures, data, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}
