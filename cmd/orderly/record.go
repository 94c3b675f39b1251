package main

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"orderly-client/internal/alert"
	"orderly-client/internal/config"
	"orderly-client/internal/core"
	"orderly-client/internal/exchange"
	"orderly-client/internal/market"
	"orderly-client/internal/store"
)

// snapshotRecord is one line of the recorder journal.
type snapshotRecord struct {
	TS      int64           `json:"ts"`
	Network core.Network    `json:"network"`
	Tickers []market.Ticker `json:"tickers"`
}

type snapshotAppender interface {
	Append(at time.Time, v any) error
}

var recordCmd = &cli.Command{
	Name:  "record",
	Usage: "Periodically append futures snapshots to a daily JSONL journal",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "out-dir",
			Usage:       "journal directory",
			DefaultText: "from config, data/orderly",
		},
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "time between snapshots",
			DefaultText: "from config, 1m",
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "stop after this many snapshots; 0 runs until interrupted",
		},
	},
	Action: func(cctx *cli.Context) error {
		e, err := newEnv(cctx)
		if err != nil {
			return err
		}
		defer closeEnv(e)

		dir := e.cfg.Record.Dir
		if cctx.IsSet("out-dir") {
			dir = cctx.String("out-dir")
		}
		interval := time.Duration(e.cfg.Record.IntervalSec) * time.Second
		if cctx.IsSet("interval") {
			interval = cctx.Duration("interval")
		}
		if interval <= 0 {
			return errors.New("interval must be > 0")
		}
		count := cctx.Int("count")
		if count < 0 {
			return errors.New("count must be >= 0")
		}

		lock, err := store.AcquireDirLock(dir, store.LockOptions{
			Takeover:   true,
			StaleAfter: time.Duration(e.cfg.Record.LockStaleSec) * time.Second,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warnw("release recorder lock", "err", err)
			}
		}()
		journal, err := store.OpenJournal(dir)
		if err != nil {
			return err
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Warnw("close journal", "err", err)
			}
		}()

		log.Infow("recording futures snapshots", "dir", dir, "interval", interval, "count", count)
		err = runRecorder(cctx.Context, e.client, journal, alerterOf(e.alerts), e.cfg.Network, interval, count, time.Now)
		log.Infow("recorder stopped", "lines", journal.Lines())
		return err
	},
}

// runRecorder takes a snapshot immediately and then every interval. A failed
// fetch is logged and alerted and does not stop the loop; a failed write does.
func runRecorder(ctx context.Context, reader exchange.MarketReader, out snapshotAppender, alerter alert.Alerter,
	network core.Network, interval time.Duration, count int, now func() time.Time) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	written := 0
	for {
		at := now().UTC()
		rows, err := reader.Futures(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			log.Warnw("snapshot fetch failed", "err", err)
			if alerter != nil {
				alerter.Important("record_fetch_failed", map[string]string{"error": describeRequestError(err).Error()})
			}
		default:
			rec := snapshotRecord{TS: at.UnixMilli(), Network: network, Tickers: make([]market.Ticker, 0, len(rows))}
			for _, row := range rows {
				rec.Tickers = append(rec.Tickers, market.FromFutures(row))
			}
			market.SortTickers(rec.Tickers, market.Sort{Key: config.SortSymbol, Order: config.OrderAsc})
			if err := out.Append(at, rec); err != nil {
				return err
			}
			written++
			log.Debugw("snapshot recorded", "markets", len(rec.Tickers), "written", written)
			if count > 0 && written >= count {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
