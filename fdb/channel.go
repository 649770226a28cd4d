package fdb

import (
	"math/big"
)

type Channel struct {
	ChanPoint ChanPoint
	ChanId    ChanId
	ToNode    PubKey
	Capacity  int64
	Active    bool
	Pending   bool
}

// UnionChannels concatenates channel sets, keeping only the first channel
// seen for every channel point.
func UnionChannels(sets ...[]*Channel) []*Channel {
	seen := make(map[ChanPoint]struct{})

	var union []*Channel
	for _, set := range sets {
		for _, channel := range set {
			if channel == nil {
				continue
			}

			if _, ok := seen[channel.ChanPoint]; ok {
				continue
			}

			seen[channel.ChanPoint] = struct{}{}
			union = append(union, channel)
		}
	}

	return union
}

// FeeRate is the fee currently broadcast by this node for one channel.
type FeeRate struct {
	ChanPoint   ChanPoint
	ChanId      ChanId
	FeeRatePpm  int64
	BaseFeeMsat *big.Int
}

type RoutingPolicy struct {
	PubKey           PubKey
	TimeLockDelta    uint32
	FeeBaseMsat      int64
	FeeRateMilliMsat int64
	Disabled         bool
}

// ChannelPolicy holds both directions of a channel's announced policy.
type ChannelPolicy struct {
	ChanPoint ChanPoint
	ChanId    ChanId
	Policies  []*RoutingPolicy
}

// PolicyFor returns the side of the channel announced by the given node, or
// nil when that node has no policy on the channel.
func (p *ChannelPolicy) PolicyFor(key PubKey) *RoutingPolicy {
	for _, policy := range p.Policies {
		if policy != nil && policy.PubKey == key {
			return policy
		}
	}

	return nil
}

// PeerTarget is a user query resolved against the node's peers. PubKey is
// empty when nothing matched.
type PeerTarget struct {
	Query  string
	PubKey PubKey
}

func (t PeerTarget) Resolved() bool {
	return t.PubKey != ""
}

// FeeUpdate is a single channel policy write. BaseFeeMsat and TimeLockDelta
// are nil when the node's defaults should apply.
type FeeUpdate struct {
	ChanPoint     ChanPoint
	ChanId        ChanId
	From          PubKey
	FeeRatePpm    uint32
	BaseFeeMsat   *big.Int
	TimeLockDelta *uint32
}

// Row is one peer line of the fee report.
type Row struct {
	Alias       string
	OutFee      string
	PubKey      PubKey
	Highlighted bool
}
