package orderly

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"orderly-client/internal/core"
	"orderly-client/internal/metrics"
)

type wsServerResult struct {
	path  string
	sub   wsSubscribe
	pong  wsPong
	err   error
	stage string
}

// newWSServer upgrades one connection and runs script against it.
func newWSServer(t *testing.T, script func(conn *websocket.Conn, res *wsServerResult)) (string, <-chan wsServerResult) {
	t.Helper()
	results := make(chan wsServerResult, 1)
	release := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := wsServerResult{path: r.URL.Path}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			res.err = err
			results <- res
			return
		}
		defer conn.Close()
		if err := conn.ReadJSON(&res.sub); err != nil {
			res.err, res.stage = err, "read subscribe"
			results <- res
			return
		}
		script(conn, &res)
		results <- res
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stream", results
}

func TestTickerStreamSubscribesAnswersPingAndDecodes(t *testing.T) {
	wsURL, results := newWSServer(t, func(conn *websocket.Conn, res *wsServerResult) {
		_ = conn.WriteJSON(map[string]any{"id": res.sub.ID, "event": "subscribe", "success": true, "ts": 1})
		_ = conn.WriteJSON(map[string]any{"event": "ping", "ts": 2})
		if err := conn.ReadJSON(&res.pong); err != nil {
			res.err, res.stage = err, "read pong"
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"topic":"tickers","ts":3,"data":[{"symbol":"PERP_ETH_USDC","open":2000,"close":"2100.5","high":2200,"low":1990,"volume":"1234.5","amount":"2500000","count":420}]}`))
	})

	rec := metrics.New()
	c := NewClientWithOptions(Options{WSBaseURL: wsURL, AccountID: "abc123", Now: fixedClock, Metrics: rec})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := c.NewTickerStream(ctx, 0)
	require.NoError(t, err)
	batches, errs := stream.Tickers(ctx)

	var batch []core.StreamTicker
	select {
	case batch = <-batches:
	case err := <-errs:
		t.Fatalf("stream error: %v", err)
	case <-ctx.Done():
		t.Fatalf("no tickers received")
	}
	require.Len(t, batch, 1)
	require.Equal(t, "PERP_ETH_USDC", batch[0].Symbol)
	require.Equal(t, "2100.5", batch[0].Close.String())
	require.EqualValues(t, 420, batch[0].Count)

	res := <-results
	require.NoError(t, res.err, res.stage)
	require.Equal(t, "/ws/stream/abc123", res.path)
	require.Equal(t, "subscribe", res.sub.Event)
	require.Equal(t, TopicTickers, res.sub.Topic)
	_, err = uuid.Parse(res.sub.ID)
	require.NoError(t, err)
	require.Equal(t, wsPong{Event: "pong", TS: fixedMillis}, res.pong)
	require.Equal(t, 1.0, counterValue(t, rec, "orderly_stream_messages_total", map[string]string{"topic": TopicTickers}))

	cancel()
	for range batches {
	}
}

func TestTickerStreamReportsRejectedSubscription(t *testing.T) {
	wsURL, _ := newWSServer(t, func(conn *websocket.Conn, res *wsServerResult) {
		_ = conn.WriteJSON(map[string]any{"id": res.sub.ID, "event": "subscribe", "topic": "tickers", "success": false, "errorMsg": "invalid topic", "ts": 1})
	})

	c := NewClientWithOptions(Options{WSBaseURL: wsURL, AccountID: "abc123"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := c.NewTickerStream(ctx, time.Second)
	require.NoError(t, err)
	batches, errs := stream.Tickers(ctx)

	for range batches {
	}
	select {
	case err := <-errs:
		require.ErrorContains(t, err, "invalid topic")
	default:
		t.Fatalf("expected subscribe error")
	}
}

func TestTickerStreamClosesOnCancel(t *testing.T) {
	wsURL, _ := newWSServer(t, func(conn *websocket.Conn, res *wsServerResult) {})

	c := NewClientWithOptions(Options{WSBaseURL: wsURL, AccountID: "abc123"})
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := c.NewTickerStream(ctx, 0)
	require.NoError(t, err)
	batches, errs := stream.Tickers(ctx)
	cancel()

	select {
	case _, ok := <-batches:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatalf("stream did not close after cancel")
	}
	select {
	case err := <-errs:
		t.Fatalf("unexpected error after cancel: %v", err)
	default:
	}
}

func TestNewTickerStreamRequiresAccount(t *testing.T) {
	c := NewClientWithOptions(Options{WSBaseURL: "ws://127.0.0.1:1/ws/stream"})
	_, err := c.NewTickerStream(context.Background(), 0)
	require.ErrorContains(t, err, "account id required")

	c = NewClientWithOptions(Options{AccountID: "abc"})
	_, err = c.NewTickerStream(context.Background(), 0)
	require.ErrorContains(t, err, "ws base url required")
}
