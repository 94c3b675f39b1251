package main

import (
	"context"
	"io"

	"github.com/urfave/cli/v2"

	"orderly-client/internal/exchange"
	"orderly-client/internal/portfolio"
)

var accountCmd = &cli.Command{
	Name:  "account",
	Usage: "Show collateral, holdings and open positions",
	Action: func(cctx *cli.Context) error {
		e, err := newEnv(cctx)
		if err != nil {
			return err
		}
		defer closeEnv(e)
		if err := e.requireCredentials(); err != nil {
			return err
		}
		return runAccount(cctx.Context, e.client, cctx.App.Writer)
	},
}

func runAccount(ctx context.Context, reader exchange.AccountReader, w io.Writer) error {
	snap, err := reader.Snapshot(ctx)
	if err != nil {
		return describeRequestError(err)
	}
	return portfolio.Render(w, snap)
}
