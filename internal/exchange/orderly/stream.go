package orderly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"orderly-client/internal/core"
)

const TopicTickers = "tickers"

// TickerStream is a public websocket subscription to the tickers topic.
type TickerStream struct {
	client    *Client
	conn      *websocket.Conn
	keepalive time.Duration
}

// NewTickerStream dials <ws base>/<account id> and subscribes to tickers.
func (c *Client) NewTickerStream(ctx context.Context, keepalive time.Duration) (*TickerStream, error) {
	if c.wsBaseURL == "" {
		return nil, errors.New("ws base url required")
	}
	if c.accountID == "" {
		return nil, errors.New("account id required for websocket stream")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsBaseURL+"/"+c.accountID, nil)
	if err != nil {
		return nil, err
	}
	sub := wsSubscribe{ID: uuid.NewString(), Event: "subscribe", Topic: TopicTickers}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debugw("ticker stream subscribed", "id", sub.ID)
	return &TickerStream{client: c, conn: conn, keepalive: keepalive}, nil
}

func (s *TickerStream) Close() error { return s.conn.Close() }

// Tickers delivers each tickers push as one batch. The channel closes when the
// connection ends; the reason, if any, is sent on the error channel first.
func (s *TickerStream) Tickers(ctx context.Context) (<-chan []core.StreamTicker, <-chan error) {
	out := make(chan []core.StreamTicker)
	errCh := make(chan error, 4)
	done := make(chan struct{})

	reportErr := func(err error) {
		if err == nil {
			return
		}
		select {
		case errCh <- err:
		default:
		}
	}

	readTimeout := 45 * time.Second
	if s.keepalive > 0 {
		readTimeout = s.keepalive * 3
		if readTimeout < 30*time.Second {
			readTimeout = 30 * time.Second
		}
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go func() {
		defer close(done)
		defer close(out)
		defer s.conn.Close()

		for {
			_ = s.conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					reportErr(err)
				}
				return
			}
			var frame wsFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				continue
			}
			switch {
			case frame.Event == "ping":
				pong := wsPong{Event: "pong", TS: s.client.now().UnixMilli()}
				if err := s.conn.WriteJSON(pong); err != nil {
					reportErr(err)
					return
				}
			case frame.Event == "subscribe" && frame.Success != nil && !*frame.Success:
				reportErr(fmt.Errorf("subscribe %s rejected: %s", frame.Topic, frame.ErrMsg))
				return
			case frame.Topic == TopicTickers && len(frame.Data) > 0:
				var batch []core.StreamTicker
				if err := json.Unmarshal(frame.Data, &batch); err != nil {
					log.Debugw("skipping malformed tickers frame", "err", err)
					continue
				}
				s.client.metrics.ObserveStreamMessage(TopicTickers)
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		var tick <-chan time.Time
		if s.keepalive > 0 {
			ticker := time.NewTicker(s.keepalive)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			select {
			case <-tick:
				if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					reportErr(err)
					_ = s.conn.Close()
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				_ = s.conn.Close()
				return
			}
		}
	}()

	return out, errCh
}
