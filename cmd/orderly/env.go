package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"orderly-client/internal/alert"
	"orderly-client/internal/config"
	"orderly-client/internal/core"
	"orderly-client/internal/exchange/orderly"
	"orderly-client/internal/metrics"
)

// env is the per-command runtime built from the config file and global flags.
type env struct {
	cfg     config.Config
	client  *orderly.Client
	metrics *metrics.Recorder
	alerts  *alert.Manager

	metricsServer *http.Server
}

func loadConfig(cctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := cctx.String(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if cctx.IsSet(flagNetwork) {
		cfg.SetNetwork(core.Network(cctx.String(flagNetwork)))
	}
	if cctx.IsSet(flagAccountID) {
		cfg.Exchange.AccountID = cctx.String(flagAccountID)
	}
	if cctx.IsSet(flagSecretKey) && cctx.IsSet(flagSecretKeyPath) {
		return config.Config{}, errors.New("use only one of --secret-key and --secret-key-path")
	}
	if cctx.IsSet(flagSecretKey) {
		cfg.Exchange.SecretKey = cctx.String(flagSecretKey)
		cfg.Exchange.SecretKeyPath = ""
	}
	if cctx.IsSet(flagSecretKeyPath) {
		cfg.Exchange.SecretKeyPath = cctx.String(flagSecretKeyPath)
		cfg.Exchange.SecretKey = ""
	}
	if cctx.IsSet(flagLogLevel) {
		cfg.Observability.LogLevel = cctx.String(flagLogLevel)
	}
	if cctx.IsSet(flagMetricsAddr) {
		cfg.Observability.MetricsAddr = cctx.String(flagMetricsAddr)
	}
	if err := cfg.Finalize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newEnv(cctx *cli.Context) (*env, error) {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return nil, err
	}
	setupLogLevels(cfg.Observability.LogLevel)

	e := &env{cfg: cfg}
	if cfg.Observability.MetricsAddr != "" {
		e.metrics = metrics.New()
	}
	e.client, err = orderly.NewClient(cfg.Exchange, e.metrics)
	if err != nil {
		return nil, err
	}
	e.alerts, err = buildAlertManager(cfg)
	if err != nil {
		return nil, err
	}
	e.client.SetAlerter(e.alerts)
	if e.metrics != nil {
		if err := e.serveMetrics(cfg.Observability.MetricsAddr); err != nil {
			_ = e.close()
			return nil, err
		}
	}
	log.Debugw("runtime ready",
		"network", cfg.Network,
		"rest", cfg.Exchange.RestBaseURL,
		"account", cfg.Exchange.AccountID,
		"key", e.client.KeyID(),
	)
	return e, nil
}

// requireCredentials fails early for commands that call private endpoints.
func (e *env) requireCredentials() error {
	if !e.cfg.HasCredentials() {
		return errors.New("account id and secret key are required: set --account-id and --secret-key (or ORDERLY_SECRET_KEY)")
	}
	return nil
}

func (e *env) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.metrics.Handler())
	e.metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := e.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server stopped", "err", err)
		}
	}()
	log.Infow("serving metrics", "addr", ln.Addr().String())
	return nil
}

func (e *env) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	if e.metricsServer != nil {
		errs = append(errs, e.metricsServer.Shutdown(ctx))
	}
	if err := e.alerts.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func buildAlertManager(cfg config.Config) (*alert.Manager, error) {
	tg := cfg.Observability.Telegram
	if !tg.Enabled {
		return nil, nil
	}
	notifier, err := alert.NewTelegramNotifier(alert.TelegramOptions{
		BotToken: tg.BotToken,
		ChatID:   tg.ChatID,
		BaseURL:  tg.APIBaseURL,
		Timeout:  time.Duration(tg.TimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	dropReport := time.Duration(cfg.Observability.AlertDropReportSec) * time.Second
	if dropReport == 0 {
		dropReport = -1
	}
	return alert.NewManagerWithOptions(string(cfg.Network), cfg.Exchange.AccountID, notifier, alert.ManagerOptions{
		DropReportInterval: dropReport,
	}), nil
}

func setupLogLevels(level string) {
	if _, set := os.LookupEnv("GOLOG_LOG_LEVEL"); set {
		return
	}
	if err := logging.SetLogLevel("*", strings.ToLower(level)); err != nil {
		log.Warnw("invalid log level", "level", level, "err", err)
	}
}
