package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/feeadjust/adjuster"
	"github.com/the-lightning-land/feeadjust/lndc"
	"github.com/urfave/cli"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	version string
	// Stores the date of this build. This should be set using -ldflags during compilation.
	date string
)

var rundownCommand = cli.Command{
	Name:    "rundown",
	Aliases: []string{"r"},
	Usage:   "show the outbound fee rate towards every peer",
	Action: func(c *cli.Context) error {
		return run(c, nil, nil)
	},
}

var adjustCommand = cli.Command{
	Name:      "adjust",
	Aliases:   []string{"a"},
	ArgsUsage: "[peer...]",
	Usage:     "set the outbound fee rate of all channels with the given peers",
	Description: "Peers are given as public keys or alias fragments. Base fee and " +
		"CLTV delta stay at the highest values currently set towards each peer.",
	Flags: []cli.Flag{
		cli.StringSliceFlag{
			Name:  "to",
			Usage: "alias or public key of a peer, can be repeated",
		},
		cli.UintFlag{
			Name:  "fee_rate",
			Usage: "the fee rate in parts per million",
		},
	},
	Action: func(c *cli.Context) error {
		if !c.IsSet("fee_rate") {
			return cli.NewExitError("fee_rate is required, use rundown to only show fees", 1)
		}

		targets := append(c.StringSlice("to"), c.Args()...)
		if len(targets) == 0 {
			return cli.NewExitError("at least one peer is required", 1)
		}

		feeRate := uint32(c.Uint("fee_rate"))

		return run(c, targets, &feeRate)
	},
}

func clientConfig(c *cli.Context) *lndc.Config {
	return &lndc.Config{
		RpcServer:    c.GlobalString("rpcserver"),
		MacaroonPath: lndc.CleanAndExpandPath(c.GlobalString("macaroonpath")),
		TlsCertPath:  lndc.CleanAndExpandPath(c.GlobalString("tlscertpath")),
	}
}

func run(c *cli.Context, targets []string, feeRate *uint32) error {
	if c.GlobalBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	client, err := lndc.NewClient(clientConfig(c))
	if err != nil {
		return err
	}
	defer client.Close()

	feeAdjuster := adjuster.NewAdjuster(&adjuster.Config{
		Retry: adjuster.Retry{
			Interval: c.GlobalDuration("retry_interval"),
			Attempts: c.GlobalInt("retry_attempts"),
		},
		Concurrency: c.GlobalInt("concurrency"),
		Clock:       clock.NewDefaultClock(),
	})
	defer feeAdjuster.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := feeAdjuster.Run(ctx, &adjuster.Request{
		Node:    client,
		Logger:  log.StandardLogger(),
		Targets: targets,
		FeeRate: feeRate,
	})
	if err != nil {
		return err
	}

	fmt.Println(report.Table())

	return nil
}

// feesMain is the true entry point for fees. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func feesMain() error {
	log.SetOutput(os.Stderr)

	return newApp().Run(os.Args)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "fees"
	app.Usage = "view and adjust routing fees of an lnd node"
	app.EnableBashCompletion = true
	app.Version = version

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("version=%s commit=%s date=%s\n", version, commit, date)
	}

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpcserver",
			Value: "localhost:10009",
		},
		cli.StringFlag{
			Name:  "macaroonpath",
			Value: "admin.macaroon",
		},
		cli.StringFlag{
			Name:  "tlscertpath",
			Value: "tls.cert",
		},
		cli.DurationFlag{
			Name:  "retry_interval",
			Value: adjuster.DefaultRetry.Interval,
		},
		cli.IntFlag{
			Name:  "retry_attempts",
			Value: adjuster.DefaultRetry.Attempts,
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: adjuster.DefaultConcurrency,
			Usage: "maximum number of concurrent node calls",
		},
		cli.BoolFlag{
			Name: "debug",
		},
	}

	app.Commands = []cli.Command{
		rundownCommand,
		adjustCommand,
	}

	return app
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := feesMain(); err != nil {
		log.WithError(err).Println("Failed running fees.")
		os.Exit(1)
	}
}
