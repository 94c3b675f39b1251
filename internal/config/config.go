package config

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"orderly-client/internal/core"
)

type SortKey string
type SortOrder string

const (
	SortSymbol SortKey = "symbol"
	SortPrice  SortKey = "price"
	SortChange SortKey = "change"
	SortVolume SortKey = "volume"
)

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

var networkDefaults = map[core.Network]struct{ rest, ws string }{
	core.Testnet: {"https://testnet-api-evm.orderly.org", "wss://testnet-ws-evm.orderly.org/ws/stream"},
	core.Mainnet: {"https://api-evm.orderly.org", "wss://ws-evm.orderly.org/ws/stream"},
}

type Config struct {
	Network       core.Network        `yaml:"network"`
	Exchange      ExchangeConfig      `yaml:"exchange"`
	Markets       MarketsConfig       `yaml:"markets"`
	Record        RecordConfig        `yaml:"record"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ExchangeConfig struct {
	AccountID      string  `yaml:"account_id"`
	SecretKey      string  `yaml:"secret_key"`
	SecretKeyPath  string  `yaml:"secret_key_path"`
	RestBaseURL    string  `yaml:"rest_base_url"`
	WSBaseURL      string  `yaml:"ws_base_url"`
	HTTPTimeoutSec int64   `yaml:"http_timeout_sec"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	WSKeepaliveSec int64   `yaml:"ws_keepalive_sec"`
}

type MarketsConfig struct {
	RefreshSec     int64     `yaml:"refresh_sec"`
	Sort           SortKey   `yaml:"sort"`
	Order          SortOrder `yaml:"order"`
	MinQuoteVolume Decimal   `yaml:"min_quote_volume"`
}

type RecordConfig struct {
	Dir          string `yaml:"dir"`
	IntervalSec  int64  `yaml:"interval_sec"`
	LockStaleSec int64  `yaml:"lock_stale_sec"`
}

type ObservabilityConfig struct {
	LogLevel           string         `yaml:"log_level"`
	MetricsAddr        string         `yaml:"metrics_addr"`
	AlertDropReportSec int64          `yaml:"alert_drop_report_sec"`
	Telegram           TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BotToken   string `yaml:"bot_token"`
	ChatID     string `yaml:"chat_id"`
	APIBaseURL string `yaml:"api_base_url"`
	TimeoutSec int64  `yaml:"timeout_sec"`
}

// Default returns a testnet configuration for use without a config file.
func Default() Config {
	var cfg Config
	cfg.normalize()
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("config must contain a single YAML document")
		}
		return Config{}, err
	}
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Finalize re-runs normalization and defaults after flag overrides and validates
// the result. Base URLs left empty follow the (possibly overridden) network.
func (c *Config) Finalize() error {
	c.normalize()
	c.applyDefaults()
	return c.Validate()
}

func (c *Config) normalize() {
	c.Network = core.Network(strings.ToLower(strings.TrimSpace(string(c.Network))))
	c.Exchange.AccountID = strings.TrimSpace(c.Exchange.AccountID)
	c.Exchange.SecretKey = strings.TrimSpace(c.Exchange.SecretKey)
	c.Exchange.SecretKeyPath = strings.TrimSpace(c.Exchange.SecretKeyPath)
	c.Exchange.RestBaseURL = strings.TrimRight(strings.TrimSpace(c.Exchange.RestBaseURL), "/")
	c.Exchange.WSBaseURL = strings.TrimRight(strings.TrimSpace(c.Exchange.WSBaseURL), "/")
	c.Markets.Sort = SortKey(strings.ToLower(strings.TrimSpace(string(c.Markets.Sort))))
	c.Markets.Order = SortOrder(strings.ToLower(strings.TrimSpace(string(c.Markets.Order))))
	c.Record.Dir = strings.TrimSpace(c.Record.Dir)
	c.Observability.LogLevel = strings.ToLower(strings.TrimSpace(c.Observability.LogLevel))
	c.Observability.MetricsAddr = strings.TrimSpace(c.Observability.MetricsAddr)
	c.Observability.Telegram.BotToken = strings.TrimSpace(c.Observability.Telegram.BotToken)
	c.Observability.Telegram.ChatID = strings.TrimSpace(c.Observability.Telegram.ChatID)
	c.Observability.Telegram.APIBaseURL = strings.TrimSpace(c.Observability.Telegram.APIBaseURL)
}

func (c *Config) applyDefaults() {
	if c.Network == "" {
		c.Network = core.Testnet
	}
	if urls, ok := networkDefaults[c.Network]; ok {
		if c.Exchange.RestBaseURL == "" {
			c.Exchange.RestBaseURL = urls.rest
		}
		if c.Exchange.WSBaseURL == "" {
			c.Exchange.WSBaseURL = urls.ws
		}
	}
	if c.Exchange.HTTPTimeoutSec == 0 {
		c.Exchange.HTTPTimeoutSec = 15
	}
	if c.Exchange.RateLimitRPS > 0 && c.Exchange.RateLimitBurst == 0 {
		c.Exchange.RateLimitBurst = 1
	}
	if c.Exchange.WSKeepaliveSec == 0 {
		c.Exchange.WSKeepaliveSec = 10
	}
	if c.Markets.RefreshSec == 0 {
		c.Markets.RefreshSec = 5
	}
	if c.Markets.Sort == "" {
		c.Markets.Sort = SortVolume
	}
	if c.Markets.Order == "" {
		c.Markets.Order = OrderDesc
	}
	if c.Record.Dir == "" {
		c.Record.Dir = "data/orderly"
	}
	if c.Record.IntervalSec == 0 {
		c.Record.IntervalSec = 60
	}
	if c.Record.LockStaleSec == 0 {
		c.Record.LockStaleSec = 600
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.AlertDropReportSec == 0 {
		c.Observability.AlertDropReportSec = 60
	}
	if c.Observability.Telegram.APIBaseURL == "" {
		c.Observability.Telegram.APIBaseURL = "https://api.telegram.org"
	}
	if c.Observability.Telegram.TimeoutSec == 0 {
		c.Observability.Telegram.TimeoutSec = 10
	}
}

func (c Config) Validate() error {
	if _, ok := networkDefaults[c.Network]; !ok {
		return fmt.Errorf("network must be testnet or mainnet")
	}
	if c.Exchange.SecretKey != "" && c.Exchange.SecretKeyPath != "" {
		return fmt.Errorf("exchange secret_key and secret_key_path are mutually exclusive")
	}
	if err := validateURL(c.Exchange.RestBaseURL, "http", "https"); err != nil {
		return fmt.Errorf("exchange rest_base_url %v", err)
	}
	if err := validateURL(c.Exchange.WSBaseURL, "ws", "wss"); err != nil {
		return fmt.Errorf("exchange ws_base_url %v", err)
	}
	if c.Exchange.HTTPTimeoutSec < 1 || c.Exchange.HTTPTimeoutSec > 120 {
		return fmt.Errorf("exchange http_timeout_sec must be between 1 and 120")
	}
	if c.Exchange.RateLimitRPS < 0 {
		return fmt.Errorf("exchange rate_limit_rps must be >= 0")
	}
	if c.Exchange.RateLimitBurst < 0 {
		return fmt.Errorf("exchange rate_limit_burst must be >= 0")
	}
	if c.Exchange.WSKeepaliveSec < 1 || c.Exchange.WSKeepaliveSec > 300 {
		return fmt.Errorf("exchange ws_keepalive_sec must be between 1 and 300")
	}
	if c.Markets.RefreshSec < 1 || c.Markets.RefreshSec > 3600 {
		return fmt.Errorf("markets.refresh_sec must be between 1 and 3600")
	}
	if _, err := ParseSortKey(string(c.Markets.Sort)); err != nil {
		return fmt.Errorf("markets.sort %v", err)
	}
	if _, err := ParseSortOrder(string(c.Markets.Order)); err != nil {
		return fmt.Errorf("markets.order %v", err)
	}
	if c.Markets.MinQuoteVolume.Cmp(decimal.Zero) < 0 {
		return fmt.Errorf("markets.min_quote_volume must be >= 0")
	}
	if c.Record.IntervalSec < 1 || c.Record.IntervalSec > 86400 {
		return fmt.Errorf("record.interval_sec must be between 1 and 86400")
	}
	if c.Record.LockStaleSec < 0 || c.Record.LockStaleSec > 86400 {
		return fmt.Errorf("record.lock_stale_sec must be between 0 and 86400")
	}
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("observability.log_level must be debug, info, warn, or error")
	}
	if c.Observability.AlertDropReportSec < 0 || c.Observability.AlertDropReportSec > 3600 {
		return fmt.Errorf("observability.alert_drop_report_sec must be between 0 and 3600")
	}
	if c.Observability.Telegram.Enabled {
		if c.Observability.Telegram.BotToken == "" {
			return fmt.Errorf("observability.telegram.bot_token is required when telegram enabled")
		}
		if c.Observability.Telegram.ChatID == "" {
			return fmt.Errorf("observability.telegram.chat_id is required when telegram enabled")
		}
		if c.Observability.Telegram.TimeoutSec < 1 || c.Observability.Telegram.TimeoutSec > 120 {
			return fmt.Errorf("observability.telegram.timeout_sec must be between 1 and 120")
		}
		if err := validateURL(c.Observability.Telegram.APIBaseURL, "http", "https"); err != nil {
			return fmt.Errorf("observability.telegram.api_base_url %v", err)
		}
	}
	return nil
}

// SetNetwork switches networks. Base URLs that still hold the previous network's
// defaults are reset so Finalize fills in the new ones.
func (c *Config) SetNetwork(n core.Network) {
	if urls, ok := networkDefaults[c.Network]; ok {
		if c.Exchange.RestBaseURL == urls.rest {
			c.Exchange.RestBaseURL = ""
		}
		if c.Exchange.WSBaseURL == urls.ws {
			c.Exchange.WSBaseURL = ""
		}
	}
	c.Network = n
}

// HasCredentials reports whether private endpoints can be signed.
func (c Config) HasCredentials() bool {
	return c.Exchange.AccountID != "" && (c.Exchange.SecretKey != "" || c.Exchange.SecretKeyPath != "")
}

func ParseSortKey(v string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(v))); k {
	case SortSymbol, SortPrice, SortChange, SortVolume:
		return k, nil
	}
	return "", fmt.Errorf("must be symbol, price, change, or volume")
}

func ParseSortOrder(v string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(v))); o {
	case OrderAsc, OrderDesc:
		return o, nil
	}
	return "", fmt.Errorf("must be asc or desc")
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must include scheme and host")
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme must be %s", strings.Join(schemes, " or "))
}
