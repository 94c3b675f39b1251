package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("orderly")

const (
	flagConfig        = "config"
	flagNetwork       = "network"
	flagAccountID     = "account-id"
	flagSecretKey     = "secret-key"
	flagSecretKeyPath = "secret-key-path"
	flagLogLevel      = "log-level"
	flagMetricsAddr   = "metrics-addr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fatal(err.Error())
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "orderly",
		Usage:                "Signed Orderly Network REST client: account, markets and request signing",
		EnableBashCompletion: true,
		Before: func(cctx *cli.Context) error {
			if cctx.IsSet("color") {
				color.NoColor = !cctx.Bool("color")
			}
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "config yaml path",
				EnvVars: []string{"ORDERLY_CONFIG"},
			},
			&cli.StringFlag{
				Name:        flagNetwork,
				Usage:       "testnet or mainnet",
				EnvVars:     []string{"ORDERLY_NETWORK"},
				DefaultText: "testnet",
			},
			&cli.StringFlag{
				Name:    flagAccountID,
				Usage:   "Orderly account id",
				EnvVars: []string{"ORDERLY_ACCOUNT_ID"},
			},
			&cli.StringFlag{
				Name:    flagSecretKey,
				Usage:   "Orderly ed25519 secret key (hex or base58, optional ed25519: prefix)",
				EnvVars: []string{"ORDERLY_SECRET_KEY"},
			},
			&cli.StringFlag{
				Name:  flagSecretKeyPath,
				Usage: "file holding the Orderly secret key",
			},
			&cli.StringFlag{
				Name:        flagLogLevel,
				Usage:       "debug, info, warn or error",
				DefaultText: "info",
			},
			&cli.StringFlag{
				Name:  flagMetricsAddr,
				Usage: "serve Prometheus metrics on this address, e.g. :9102",
			},
			&cli.BoolFlag{
				Name:        "color",
				Usage:       "use color in display output",
				DefaultText: "depends on output being a TTY",
			},
		},
		Commands: []*cli.Command{
			accountCmd,
			marketsCmd,
			streamCmd,
			recordCmd,
			signCmd,
		},
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
