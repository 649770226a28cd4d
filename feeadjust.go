package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/feeadjust/adjuster"
	"github.com/the-lightning-land/feeadjust/lndc"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	version string
	// Stores the date of this build. This should be set using -ldflags during compilation.
	date string
)

// feeadjustMain is the true entry point for feeadjust. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func feeadjustMain() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		fmt.Printf("version=%s commit=%s date=%s\n", version, commit, date)
		return nil
	}

	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	log.Debugf("Version %s (commit %s) built on %s", version, commit, date)

	client, err := lndc.NewClient(&lndc.Config{
		RpcServer:            cfg.LndNode.RpcServer,
		MacaroonPath:         cfg.LndNode.MacaroonPath,
		TlsCertPath:          cfg.LndNode.TlsCertPath,
		DefaultBaseFeeMsat:   cfg.LndNode.BaseFeeMsat,
		DefaultTimeLockDelta: cfg.LndNode.TimeLockDelta,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	feeAdjuster := adjuster.NewAdjuster(&adjuster.Config{
		Retry: adjuster.Retry{
			Interval: cfg.Retry.Interval,
			Attempts: cfg.Retry.Attempts,
		},
		Concurrency: cfg.Concurrency,
		Clock:       clock.NewDefaultClock(),
	})
	defer feeAdjuster.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	req := &adjuster.Request{
		Node:    client,
		Logger:  log.StandardLogger(),
		Targets: cfg.To,
	}

	if cfg.feeRateSet {
		feeRate := cfg.FeeRate
		req.FeeRate = &feeRate
	}

	report, err := feeAdjuster.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(report.Table())

	return nil
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := feeadjustMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running feeadjust.")
		}
		os.Exit(1)
	}
}
