package orderly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/time/rate"

	"orderly-client/internal/alert"
	"orderly-client/internal/codec"
	"orderly-client/internal/config"
	"orderly-client/internal/exchange"
	"orderly-client/internal/keys"
	"orderly-client/internal/message"
	"orderly-client/internal/metrics"
	"orderly-client/internal/signer"
)

var log = logging.Logger("orderly/client")

const (
	HeaderContentType = "Content-Type"
	HeaderAccountID   = "orderly-account-id"
	HeaderKey         = "orderly-key"
	HeaderTimestamp   = "orderly-timestamp"
	HeaderSignature   = "orderly-signature"
)

// ErrMissingCredentials is returned by signed calls on a client built without an
// account id or signer.
var ErrMissingCredentials = errors.New("account id and secret key are required for private endpoints")

type AuthType int

const (
	AuthNone AuthType = iota
	AuthSigned
)

// Client issues Orderly REST calls. It is safe for concurrent use: every call
// captures its own timestamp and builds its own message and signature.
type Client struct {
	baseURL   string
	wsBaseURL string
	accountID string
	signer    signer.Signer

	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Recorder
	now        func() time.Time

	mu      sync.Mutex
	alerter alert.Alerter
}

type Options struct {
	BaseURL   string
	WSBaseURL string
	AccountID string
	// Signer may be nil for clients that only call public endpoints.
	Signer signer.Signer

	HTTPClient     *http.Client
	HTTPTimeoutSec int64
	// RateLimit caps outgoing requests per second; zero disables the limiter.
	RateLimit float64
	RateBurst int
	Metrics   *metrics.Recorder
	Now       func() time.Time
}

// NewClient builds a client from the exchange section of the config. The secret
// is parsed here and only the derived signer is kept.
func NewClient(cfg config.ExchangeConfig, rec *metrics.Recorder) (*Client, error) {
	var s signer.Signer
	switch {
	case cfg.SecretKey != "":
		key, err := keys.Parse(cfg.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("secret_key: %w", err)
		}
		s = signer.New(key)
	case cfg.SecretKeyPath != "":
		key, err := keys.LoadFile(cfg.SecretKeyPath)
		if err != nil {
			return nil, err
		}
		s = signer.New(key)
	}
	return NewClientWithOptions(Options{
		BaseURL:        cfg.RestBaseURL,
		WSBaseURL:      cfg.WSBaseURL,
		AccountID:      cfg.AccountID,
		Signer:         s,
		HTTPTimeoutSec: cfg.HTTPTimeoutSec,
		RateLimit:      cfg.RateLimitRPS,
		RateBurst:      cfg.RateLimitBurst,
		Metrics:        rec,
	}), nil
}

func NewClientWithOptions(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := 15 * time.Second
		if opts.HTTPTimeoutSec > 0 {
			timeout = time.Duration(opts.HTTPTimeoutSec) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		wsBaseURL:  strings.TrimRight(opts.WSBaseURL, "/"),
		accountID:  strings.TrimSpace(opts.AccountID),
		signer:     opts.Signer,
		httpClient: httpClient,
		limiter:    limiter,
		metrics:    opts.Metrics,
		now:        now,
	}
}

func (c *Client) SetAlerter(alerter alert.Alerter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerter = alerter
}

func (c *Client) alertImportant(event string, fields map[string]string) {
	c.mu.Lock()
	alerter := c.alerter
	c.mu.Unlock()
	if alerter == nil {
		return
	}
	alerter.Important(event, fields)
}

func (c *Client) AccountID() string { return c.accountID }

// KeyID returns the orderly-key header value, or "" for a public-only client.
func (c *Client) KeyID() string {
	if c.signer == nil {
		return ""
	}
	return c.signer.KeyID()
}

// Call performs one signed request and returns the envelope's data field. path
// includes the query string. For GET the body is neither signed nor sent.
func (c *Client) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	var payload []byte
	if method != http.MethodGet {
		var err error
		payload, err = message.EncodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
	} else if body != nil {
		log.Debugw("ignoring body on GET request", "path", path)
	}
	return c.doRequest(ctx, method, path, payload, AuthSigned)
}

// Public performs an unauthenticated GET against a /v1/public endpoint.
func (c *Client) Public(ctx context.Context, path string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil, AuthNone)
}

// SignHeaders returns the five authentication headers for a request issued at ts.
// body must be the exact bytes that will be sent.
func (c *Client) SignHeaders(method, path string, body []byte, ts time.Time) (http.Header, error) {
	if c.accountID == "" || c.signer == nil {
		return nil, ErrMissingCredentials
	}
	millis := ts.UnixMilli()
	sig, err := c.signer.Sign(message.Build(millis, method, path, body))
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}
	h := make(http.Header, 5)
	h.Set(HeaderContentType, "application/json")
	h.Set(HeaderAccountID, c.accountID)
	h.Set(HeaderKey, c.signer.KeyID())
	h.Set(HeaderTimestamp, strconv.FormatInt(millis, 10))
	h.Set(HeaderSignature, codec.EncodeBase64URL(sig))
	return h, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, auth AuthType) (json.RawMessage, error) {
	metricPath := path
	if i := strings.IndexByte(metricPath, '?'); i >= 0 {
		metricPath = metricPath[:i]
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &RequestError{Message: err.Error(), Err: err}
		}
	}

	var header http.Header
	if auth == AuthSigned {
		var err error
		header, err = c.SignHeaders(method, path, body, c.now())
		if err != nil {
			return nil, err
		}
	} else {
		header = http.Header{HeaderContentType: []string{"application/json"}}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header = header

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, metricPath, metrics.OutcomeTransport, time.Since(start))
		log.Debugw("request transport error", "method", method, "path", path, "err", err)
		return nil, &RequestError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(method, metricPath, metrics.OutcomeTransport, elapsed)
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}

	data, err := parseEnvelope(resp.StatusCode, raw)
	if err != nil {
		outcome := metrics.OutcomeAPIError
		reqErr, _ := AsRequestError(err)
		if reqErr != nil && reqErr.Err != nil {
			outcome = metrics.OutcomeInvalidBody
		}
		c.metrics.ObserveRequest(method, metricPath, outcome, elapsed)
		log.Debugw("request failed", "method", method, "path", path, "status", resp.StatusCode, "elapsed", elapsed, "err", err)
		if auth == AuthSigned && reqErr != nil && IsUnauthorized(err) {
			c.alertImportant("orderly_auth_rejected", map[string]string{
				"method":  method,
				"path":    metricPath,
				"status":  strconv.Itoa(resp.StatusCode),
				"message": reqErr.Message,
				"key":     c.signer.KeyID(),
			})
		}
		return nil, err
	}
	c.metrics.ObserveRequest(method, metricPath, metrics.OutcomeOK, elapsed)
	log.Debugw("request ok", "method", method, "path", path, "status", resp.StatusCode, "elapsed", elapsed)
	return data, nil
}

// parseEnvelope unwraps {success, data, message}. A non-2xx status or success=false
// is a failure carrying the server's message, else an HTTP status message.
func parseEnvelope(status int, raw []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status/100 != 2 {
			return nil, classifyRequestError(&RequestError{StatusCode: status, Message: statusMessage(status)})
		}
		return nil, &RequestError{StatusCode: status, Message: "invalid response body: " + err.Error(), Err: err}
	}
	if status/100 != 2 || !env.Success {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = statusMessage(status)
		}
		return nil, classifyRequestError(&RequestError{StatusCode: status, Code: env.Code, Message: msg})
	}
	return env.Data, nil
}

func statusMessage(status int) string {
	return "HTTP " + strconv.Itoa(status) + ": Request failed"
}

var (
	_ exchange.Caller        = (*Client)(nil)
	_ exchange.AccountReader = (*Client)(nil)
	_ exchange.MarketReader  = (*Client)(nil)
)
