package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"orderly-client/internal/config"
	"orderly-client/internal/exchange"
	"orderly-client/internal/market"
)

const clearScreen = "\033[H\033[2J"

var marketFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "filter",
		Usage: "only show symbols containing this text (case-insensitive)",
	},
	&cli.StringFlag{
		Name:        "sort",
		Usage:       "symbol, price, change or volume",
		DefaultText: "from config, volume",
	},
	&cli.StringFlag{
		Name:        "order",
		Usage:       "asc or desc",
		DefaultText: "from config, desc",
	},
	&cli.StringFlag{
		Name:        "min-volume",
		Usage:       "hide markets with less 24h quote volume, e.g. 250K or 1.5M",
		DefaultText: "from config, 0",
	},
}

var marketsCmd = &cli.Command{
	Name:  "markets",
	Usage: "Show 24h statistics of every perpetual market",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "keep refreshing the board until interrupted",
		},
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "refresh interval in watch mode",
			DefaultText: "from config, 5s",
		},
	}, marketFlags...),
	Action: func(cctx *cli.Context) error {
		e, err := newEnv(cctx)
		if err != nil {
			return err
		}
		defer closeEnv(e)

		board, err := boardFromFlags(cctx, e.cfg)
		if err != nil {
			return err
		}
		interval := time.Duration(e.cfg.Markets.RefreshSec) * time.Second
		if cctx.IsSet("interval") {
			interval = cctx.Duration("interval")
		}
		if interval <= 0 {
			return fmt.Errorf("interval must be > 0")
		}
		return runMarkets(cctx.Context, e.client, board, cctx.App.Writer, cctx.Bool("watch"), interval)
	},
}

// boardFromFlags applies config defaults and then the command's sort and filter flags.
func boardFromFlags(cctx *cli.Context, cfg config.Config) (*market.Board, error) {
	s := market.Sort{Key: cfg.Markets.Sort, Order: cfg.Markets.Order}
	if cctx.IsSet("sort") {
		key, err := config.ParseSortKey(cctx.String("sort"))
		if err != nil {
			return nil, fmt.Errorf("--sort %v", err)
		}
		if key != s.Key {
			s = market.Sort{Key: key, Order: config.OrderDesc}
		}
	}
	if cctx.IsSet("order") {
		order, err := config.ParseSortOrder(cctx.String("order"))
		if err != nil {
			return nil, fmt.Errorf("--order %v", err)
		}
		s.Order = order
	}
	board := market.NewBoard(s)
	board.SetFilter(cctx.String("filter"))
	minVolume := cfg.Markets.MinQuoteVolume.Decimal
	if cctx.IsSet("min-volume") {
		v, err := config.ParseDecimal(cctx.String("min-volume"))
		if err != nil || v.Sign() < 0 {
			return nil, fmt.Errorf("--min-volume must be a non-negative number: %q", cctx.String("min-volume"))
		}
		minVolume = v
	}
	board.SetMinVolume(minVolume)
	return board, nil
}

func runMarkets(ctx context.Context, reader exchange.MarketReader, board *market.Board, w io.Writer, watch bool, interval time.Duration) error {
	refresh := func() error {
		rows, err := reader.Futures(ctx)
		if err != nil {
			return err
		}
		board.Replace(rows)
		return nil
	}
	if err := refresh(); err != nil {
		return describeRequestError(err)
	}
	if !watch {
		return market.Render(w, board.View())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var lastErr error
	for {
		if err := renderWatch(w, board, lastErr); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			lastErr = refresh()
			if lastErr != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Warnw("market refresh failed", "err", lastErr)
			}
		}
	}
}

func renderWatch(w io.Writer, board *market.Board, lastErr error) error {
	rows := board.View()
	s := board.Sort()
	status := "live"
	if lastErr != nil {
		status = "stale: " + describeRequestError(lastErr).Error()
	}
	fmt.Fprint(w, clearScreen)
	fmt.Fprintf(w, "%s  %d/%d markets  sort=%s %s  [%s]\n\n",
		time.Now().UTC().Format(time.RFC3339), len(rows), board.Len(), s.Key, s.Order, status)
	return market.Render(w, rows)
}
