package adjuster

import (
	"context"

	"github.com/alitto/pond/v2"
	"github.com/kr/pretty"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/the-lightning-land/feeadjust/fdb"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds node calls in flight when Config leaves it unset.
const DefaultConcurrency = 8

type Adjuster struct {
	pool  pond.Pool
	retry Retry
	clock clock.Clock
}

type Config struct {
	// Retry governs fee update writes. Reads are never retried.
	Retry Retry

	// Concurrency bounds the number of node calls in flight for the
	// per-channel and per-peer fan-outs.
	Concurrency int

	Clock clock.Clock
}

func NewAdjuster(config *Config) *Adjuster {
	adjuster := &Adjuster{
		retry: config.Retry,
		clock: config.Clock,
	}

	if adjuster.retry.Attempts <= 0 {
		adjuster.retry = DefaultRetry
	}

	if adjuster.clock == nil {
		adjuster.clock = clock.NewDefaultClock()
	}

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	adjuster.pool = pond.NewPool(concurrency)

	return adjuster
}

func (a *Adjuster) Stop() {
	a.pool.StopAndWait()
}

// nodeState is the snapshot read from the node before any resolution.
type nodeState struct {
	channels []*fdb.Channel
	pending  []*fdb.Channel
	pubKey   fdb.PubKey
	feeRates []*fdb.FeeRate
}

func (a *Adjuster) fetchState(ctx context.Context, node Node) (*nodeState, error) {
	state := &nodeState{}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		channels, err := node.Channels(groupCtx)
		if err != nil {
			return fdb.NodeQueryError{Query: "get channels", Err: err}
		}
		state.channels = channels
		return nil
	})

	group.Go(func() error {
		pending, err := node.PendingChannels(groupCtx)
		if err != nil {
			return fdb.NodeQueryError{Query: "get pending channels", Err: err}
		}
		state.pending = pending
		return nil
	})

	group.Go(func() error {
		pubKey, err := node.IdentityPubKey(groupCtx)
		if err != nil {
			return fdb.NodeQueryError{Query: "get identity pubkey", Err: err}
		}
		state.pubKey = pubKey
		return nil
	})

	group.Go(func() error {
		feeRates, err := fetchFeeRates(groupCtx, node)
		if err != nil {
			return err
		}
		state.feeRates = feeRates
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return state, nil
}

func fetchFeeRates(ctx context.Context, node Node) ([]*fdb.FeeRate, error) {
	feeRates, err := node.FeeRates(ctx)
	if err != nil {
		return nil, fdb.NodeQueryError{Query: "get fee rates", Err: err}
	}

	return feeRates, nil
}

// Run reads the node's channels and fees, sets the requested fee rate on
// every channel with the targeted peers and reports the resulting fees per
// peer.
func (a *Adjuster) Run(ctx context.Context, req *Request) (*Report, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	node, logger := req.Node, req.Logger

	state, err := a.fetchState(ctx, node)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Found %v open and %v pending channels", len(state.channels), len(state.pending))

	var (
		aliases  []PeerAlias
		targets  []fdb.PeerTarget
		policies []*fdb.ChannelPolicy
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		aliases = a.resolveAliases(groupCtx, node, logger, state.channels)
		targets = resolveTargets(logger, aliases, req.Targets)
		return nil
	})

	group.Go(func() error {
		var err error
		policies, err = a.fetchPolicies(groupCtx, node, state.channels)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if req.FeeRate != nil {
		updates := Plan(&PlanInput{
			FeeRatePpm: *req.FeeRate,
			PubKey:     state.pubKey,
			Targets:    targets,
			Channels:   fdb.UnionChannels(state.channels, state.pending),
			FeeRates:   state.feeRates,
			Policies:   policies,
		})

		logger.Infof("Updating fees of %v channels", len(updates))
		for _, update := range updates {
			logger.Debugf("Planned fee update %# v", pretty.Formatter(update))
		}

		if err := a.applyUpdates(ctx, node, logger, updates); err != nil {
			return nil, err
		}
	}

	feeRates, err := fetchFeeRates(ctx, node)
	if err != nil {
		return nil, err
	}

	return BuildReport(aliases, state.channels, targets, feeRates), nil
}
