package adjuster

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/feeadjust/fdb"
)

const (
	testTxId = "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

	selfKey  = fdb.PubKey("02aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	peerKey  = fdb.PubKey("03bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	otherKey = fdb.PubKey("03cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc")
)

func chanPoint(t *testing.T, index uint32) fdb.ChanPoint {
	chanPoint, err := fdb.NewChanPointFromString(fmt.Sprintf("%v:%d", testTxId, index))
	require.NoError(t, err)

	return chanPoint
}

// fakeNode is an in-memory Node. Fee updates are applied to its fee rates so
// a second fee rate read observes them.
type fakeNode struct {
	mu sync.Mutex

	channels []*fdb.Channel
	pending  []*fdb.Channel
	pubKey   fdb.PubKey
	feeRates []*fdb.FeeRate
	policies map[fdb.ChanPoint]*fdb.ChannelPolicy
	aliases  map[fdb.PubKey]string

	channelsErr  error
	pendingErr   error
	pubKeyErr    error
	feeRatesErr  error
	policyErrs   map[fdb.ChanPoint]error
	aliasErrs    map[fdb.PubKey]error
	updateErrs   map[fdb.ChanPoint][]error
	feeRateReads int
	updates      []*fdb.FeeUpdate
	attempts     map[fdb.ChanPoint]int
	aliasReads   map[fdb.PubKey]int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		pubKey:     selfKey,
		policies:   make(map[fdb.ChanPoint]*fdb.ChannelPolicy),
		aliases:    make(map[fdb.PubKey]string),
		policyErrs: make(map[fdb.ChanPoint]error),
		aliasErrs:  make(map[fdb.PubKey]error),
		updateErrs: make(map[fdb.ChanPoint][]error),
		attempts:   make(map[fdb.ChanPoint]int),
		aliasReads: make(map[fdb.PubKey]int),
	}
}

func (n *fakeNode) addChannel(t *testing.T, index uint32, peer fdb.PubKey, feeRatePpm, baseFeeMsat int64) *fdb.Channel {
	channel := &fdb.Channel{
		ChanPoint: chanPoint(t, index),
		ChanId:    fdb.ChanId(index + 1),
		ToNode:    peer,
		Active:    true,
	}

	n.channels = append(n.channels, channel)
	n.feeRates = append(n.feeRates, &fdb.FeeRate{
		ChanPoint:   channel.ChanPoint,
		ChanId:      channel.ChanId,
		FeeRatePpm:  feeRatePpm,
		BaseFeeMsat: big.NewInt(baseFeeMsat),
	})

	return channel
}

func (n *fakeNode) addPolicy(channel *fdb.Channel, timeLockDelta uint32) {
	n.policies[channel.ChanPoint] = &fdb.ChannelPolicy{
		ChanPoint: channel.ChanPoint,
		ChanId:    channel.ChanId,
		Policies: []*fdb.RoutingPolicy{
			{PubKey: channel.ToNode, TimeLockDelta: 144},
			{PubKey: n.pubKey, TimeLockDelta: timeLockDelta},
		},
	}
}

func (n *fakeNode) Channels(ctx context.Context) ([]*fdb.Channel, error) {
	return n.channels, n.channelsErr
}

func (n *fakeNode) PendingChannels(ctx context.Context) ([]*fdb.Channel, error) {
	return n.pending, n.pendingErr
}

func (n *fakeNode) IdentityPubKey(ctx context.Context) (fdb.PubKey, error) {
	return n.pubKey, n.pubKeyErr
}

func (n *fakeNode) FeeRates(ctx context.Context) ([]*fdb.FeeRate, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.feeRateReads++
	if n.feeRatesErr != nil {
		return nil, n.feeRatesErr
	}

	feeRates := make([]*fdb.FeeRate, 0, len(n.feeRates))
	for _, feeRate := range n.feeRates {
		copied := *feeRate
		feeRates = append(feeRates, &copied)
	}

	return feeRates, nil
}

func (n *fakeNode) ChannelPolicy(ctx context.Context, channel *fdb.Channel) (*fdb.ChannelPolicy, error) {
	if err := n.policyErrs[channel.ChanPoint]; err != nil {
		return nil, err
	}

	policy, ok := n.policies[channel.ChanPoint]
	if !ok {
		return nil, fdb.ErrNotFound
	}

	return policy, nil
}

func (n *fakeNode) NodeAlias(ctx context.Context, pubKey fdb.PubKey) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.aliasReads[pubKey]++

	if err := n.aliasErrs[pubKey]; err != nil {
		return "", err
	}

	return n.aliases[pubKey], nil
}

func (n *fakeNode) UpdateChannelFee(ctx context.Context, update *fdb.FeeUpdate) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.attempts[update.ChanPoint]++

	if errs := n.updateErrs[update.ChanPoint]; len(errs) > 0 {
		err := errs[0]
		if len(errs) > 1 {
			n.updateErrs[update.ChanPoint] = errs[1:]
		}
		if err != nil {
			return err
		}
	}

	n.updates = append(n.updates, update)
	for _, feeRate := range n.feeRates {
		if feeRate.ChanPoint == update.ChanPoint {
			feeRate.FeeRatePpm = int64(update.FeeRatePpm)
		}
	}

	return nil
}

// instantClock reports a fixed time and never waits.
type instantClock struct {
	now time.Time
}

func (c instantClock) Now() time.Time {
	return c.now
}

func (c instantClock) TickAfter(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}
