package adjuster

import (
	"math/big"

	"github.com/the-lightning-land/feeadjust/fdb"
)

// PlanInput is everything known about the node when fee updates are planned.
// Channels is the union of open and pending channels.
type PlanInput struct {
	FeeRatePpm uint32
	PubKey     fdb.PubKey
	Targets    []fdb.PeerTarget
	Channels   []*fdb.Channel
	FeeRates   []*fdb.FeeRate
	Policies   []*fdb.ChannelPolicy
}

// Plan returns one fee update for every channel with a resolved target peer.
//
// When the node announced a policy on any of the peer's channels, the
// updates also carry the highest base fee and CLTV delta currently set
// towards that peer, so a bulk fee rate change never lowers either of them.
func Plan(in *PlanInput) []*fdb.FeeUpdate {
	var updates []*fdb.FeeUpdate

	for _, pubKey := range targetKeys(in.Targets) {
		updates = append(updates, planPeer(in, pubKey)...)
	}

	return updates
}

// targetKeys returns the distinct resolved keys in query order.
func targetKeys(targets []fdb.PeerTarget) []fdb.PubKey {
	seen := make(map[fdb.PubKey]struct{})

	var keys []fdb.PubKey
	for _, target := range targets {
		if !target.Resolved() {
			continue
		}

		if _, ok := seen[target.PubKey]; ok {
			continue
		}

		seen[target.PubKey] = struct{}{}
		keys = append(keys, target.PubKey)
	}

	return keys
}

func planPeer(in *PlanInput, peer fdb.PubKey) []*fdb.FeeUpdate {
	chanPoints := make(map[fdb.ChanPoint]struct{})

	var channels []*fdb.Channel
	for _, channel := range in.Channels {
		if channel.ToNode == peer {
			channels = append(channels, channel)
			chanPoints[channel.ChanPoint] = struct{}{}
		}
	}

	baseFeeMsat := new(big.Int)
	for _, feeRate := range in.FeeRates {
		if _, ok := chanPoints[feeRate.ChanPoint]; !ok || feeRate.BaseFeeMsat == nil {
			continue
		}

		if feeRate.BaseFeeMsat.Cmp(baseFeeMsat) > 0 {
			baseFeeMsat.Set(feeRate.BaseFeeMsat)
		}
	}

	var currentPolicies []*fdb.RoutingPolicy
	for _, policy := range in.Policies {
		if _, ok := chanPoints[policy.ChanPoint]; !ok {
			continue
		}

		if own := policy.PolicyFor(in.PubKey); own != nil {
			currentPolicies = append(currentPolicies, own)
		}
	}

	var timeLockDelta uint32
	for _, policy := range currentPolicies {
		if policy.TimeLockDelta > timeLockDelta {
			timeLockDelta = policy.TimeLockDelta
		}
	}

	updates := make([]*fdb.FeeUpdate, 0, len(channels))
	for _, channel := range channels {
		update := &fdb.FeeUpdate{
			ChanPoint:  channel.ChanPoint,
			ChanId:     channel.ChanId,
			From:       in.PubKey,
			FeeRatePpm: in.FeeRatePpm,
		}

		if len(currentPolicies) > 0 {
			delta := timeLockDelta
			update.BaseFeeMsat = new(big.Int).Set(baseFeeMsat)
			update.TimeLockDelta = &delta
		}

		updates = append(updates, update)
	}

	return updates
}
