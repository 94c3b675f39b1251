package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"orderly-client/internal/alert"
	"orderly-client/internal/core"
	"orderly-client/internal/exchange"
	"orderly-client/internal/exchange/orderly"
	"orderly-client/internal/market"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// tickerSource opens one websocket session. Both channels end with the session.
type tickerSource interface {
	Open(ctx context.Context) (<-chan []core.StreamTicker, <-chan error, error)
}

var streamCmd = &cli.Command{
	Name:  "stream",
	Usage: "Live ticker board over the public websocket",
	Flags: marketFlags,
	Action: func(cctx *cli.Context) error {
		e, err := newEnv(cctx)
		if err != nil {
			return err
		}
		defer closeEnv(e)
		if e.cfg.Exchange.AccountID == "" {
			return errors.New("--account-id is required: the websocket url is keyed by account")
		}
		board, err := boardFromFlags(cctx, e.cfg)
		if err != nil {
			return err
		}
		src := &clientTickerSource{
			client:    e.client,
			keepalive: time.Duration(e.cfg.Exchange.WSKeepaliveSec) * time.Second,
		}
		return runStream(cctx.Context, e.client, src, board, alerterOf(e.alerts), cctx.App.Writer)
	},
}

type clientTickerSource struct {
	client    *orderly.Client
	keepalive time.Duration
}

func (s *clientTickerSource) Open(ctx context.Context) (<-chan []core.StreamTicker, <-chan error, error) {
	stream, err := s.client.NewTickerStream(ctx, s.keepalive)
	if err != nil {
		return nil, nil, err
	}
	batches, errs := stream.Tickers(ctx)
	return batches, errs, nil
}

// alerterOf keeps a nil *alert.Manager from becoming a non-nil interface.
func alerterOf(m *alert.Manager) alert.Alerter {
	if m == nil {
		return nil
	}
	return m
}

// runStream seeds the board over REST, then merges websocket pushes until ctx is
// done, reconnecting with capped exponential backoff.
func runStream(ctx context.Context, reader exchange.MarketReader, src tickerSource, board *market.Board, alerter alert.Alerter, w io.Writer) error {
	rows, err := reader.Futures(ctx)
	if err != nil {
		return describeRequestError(err)
	}
	board.Replace(rows)
	if err := renderWatch(w, board, nil); err != nil {
		return err
	}

	backoff := reconnectMin
	for ctx.Err() == nil {
		batches, errs, err := src.Open(ctx)
		if err == nil {
			backoff = reconnectMin
			err = consumeStream(ctx, batches, errs, board, w)
		}
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("connection closed")
		}
		log.Warnw("ticker stream disconnected", "err", err, "retry_in", backoff)
		if alerter != nil {
			alerter.Important("ticker_stream_disconnected", map[string]string{
				"error":    err.Error(),
				"retry_in": backoff.String(),
			})
		}
		if err := renderWatch(w, board, err); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
	return nil
}

func consumeStream(ctx context.Context, batches <-chan []core.StreamTicker, errs <-chan error, board *market.Board, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}
			board.Merge(batch)
			if err := renderWatch(w, board, nil); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
	}
}
