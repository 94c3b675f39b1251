package orderly

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"orderly-client/internal/core"
)

const (
	pathHolding   = "/v1/client/holding"
	pathPositions = "/v1/positions"
)

func (c *Client) Holdings(ctx context.Context) (core.HoldingsInfo, error) {
	var out core.HoldingsInfo
	if err := c.callInto(ctx, http.MethodGet, pathHolding, &out); err != nil {
		return core.HoldingsInfo{}, err
	}
	return out, nil
}

func (c *Client) Positions(ctx context.Context) (core.PositionsInfo, error) {
	var out core.PositionsInfo
	if err := c.callInto(ctx, http.MethodGet, pathPositions, &out); err != nil {
		return core.PositionsInfo{}, err
	}
	return out, nil
}

// Snapshot fetches holdings and positions concurrently. Each request is signed
// with its own timestamp; the first failure cancels the other.
func (c *Client) Snapshot(ctx context.Context) (core.AccountSnapshot, error) {
	var snap core.AccountSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		holdings, err := c.Holdings(gctx)
		snap.Holdings = holdings
		return err
	})
	g.Go(func() error {
		positions, err := c.Positions(gctx)
		snap.Positions = positions
		return err
	})
	if err := g.Wait(); err != nil {
		return core.AccountSnapshot{}, err
	}
	return snap, nil
}

func (c *Client) callInto(ctx context.Context, method, path string, out any) error {
	data, err := c.Call(ctx, method, path, nil)
	if err != nil {
		return err
	}
	return decodeData(method, path, data, out)
}

func decodeData(method, path string, data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
