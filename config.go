package main

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"
	"github.com/the-lightning-land/feeadjust/adjuster"
	"github.com/the-lightning-land/feeadjust/lndc"
)

type lndNodeConfig struct {
	RpcServer     string `long:"rpcserver" description:"host:port of ln daemon"`
	MacaroonPath  string `long:"macaroonpath" description:"path to macaroon file"`
	TlsCertPath   string `long:"tlscertpath" description:"path to TLS certificate"`
	BaseFeeMsat   int64  `long:"basefee" description:"base fee in msat for channels without a known policy"`
	TimeLockDelta uint32 `long:"timelockdelta" description:"CLTV delta for channels without a known policy"`
}

type retryConfig struct {
	Interval time.Duration `long:"interval" description:"Time to wait between attempts of a failed fee update"`
	Attempts int           `long:"attempts" description:"Number of attempts per fee update before giving up"`
}

type config struct {
	ShowVersion bool          `short:"v" long:"version" description:"Display version information and exit."`
	ConfigFile  string        `long:"configfile" description:"Path to an ini configuration file"`
	Debug       bool          `long:"debug" description:"Start in debug mode."`
	Node        string        `long:"node" description:"The node whose fees should be adjusted." choice:"lnd"`
	To          []string      `long:"to" description:"Alias or public key of a peer to adjust fees towards. Can be repeated."`
	FeeRate     uint32        `long:"feerate" description:"Fee rate in parts per million to set. Only reports fees when omitted."`
	Concurrency int           `long:"concurrency" description:"Maximum number of concurrent node calls"`
	LndNode     lndNodeConfig `group:"LND" namespace:"lnd"`
	Retry       retryConfig   `group:"Retry" namespace:"retry"`

	feeRateSet bool
}

func loadConfig(args []string) (*config, error) {
	defaultCfg := config{
		Debug:       false,
		Node:        "lnd",
		Concurrency: adjuster.DefaultConcurrency,
		LndNode: lndNodeConfig{
			RpcServer:     "localhost:10009",
			MacaroonPath:  "admin.macaroon",
			TlsCertPath:   "tls.cert",
			BaseFeeMsat:   lndc.DefaultBaseFeeMsat,
			TimeLockDelta: lndc.DefaultTimeLockDelta,
		},
		Retry: retryConfig{
			Interval: adjuster.DefaultRetry.Interval,
			Attempts: adjuster.DefaultRetry.Attempts,
		},
	}

	// Parse once to find the config file, which the command line then
	// overrides.
	preCfg := defaultCfg
	if _, err := flags.ParseArgs(&preCfg, args); err != nil {
		return nil, err
	}

	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	cfg := defaultCfg
	parser := flags.NewParser(&cfg, flags.Default)

	if preCfg.ConfigFile != "" {
		err := flags.NewIniParser(parser).ParseFile(lndc.CleanAndExpandPath(preCfg.ConfigFile))
		if err != nil {
			return nil, errors.Errorf("Could not parse config file: %v", err)
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	cfg.feeRateSet = parser.FindOptionByLongName("feerate").IsSet()

	if cfg.Retry.Attempts <= 0 {
		return nil, errors.Errorf("Expected at least one fee update attempt, got %d", cfg.Retry.Attempts)
	}

	if cfg.Retry.Interval < 0 {
		return nil, errors.Errorf("Expected a positive retry interval, got %v", cfg.Retry.Interval)
	}

	cfg.LndNode.MacaroonPath = lndc.CleanAndExpandPath(cfg.LndNode.MacaroonPath)
	cfg.LndNode.TlsCertPath = lndc.CleanAndExpandPath(cfg.LndNode.TlsCertPath)

	return &cfg, nil
}
