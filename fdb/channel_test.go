package fdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func testChanPoint(t *testing.T, index uint32) ChanPoint {
	chanPoint, err := NewChanPointFromString(fmt.Sprintf("%v:%d", testTxId, index))
	require.NoError(t, err)

	return chanPoint
}

func TestUnionChannels(t *testing.T) {
	open := []*Channel{
		{ChanPoint: testChanPoint(t, 0), ToNode: "alice"},
		{ChanPoint: testChanPoint(t, 1), ToNode: "bob"},
	}
	pending := []*Channel{
		{ChanPoint: testChanPoint(t, 1), ToNode: "bob", Pending: true},
		{ChanPoint: testChanPoint(t, 2), ToNode: "carol", Pending: true},
		nil,
	}

	union := UnionChannels(open, pending)
	require.Len(t, union, 3)

	seen := make(map[ChanPoint]bool)
	for _, channel := range union {
		require.False(t, seen[channel.ChanPoint], "duplicate %v", channel.ChanPoint)
		seen[channel.ChanPoint] = true
	}

	// The open channel wins over the pending copy.
	require.False(t, union[1].Pending)
	require.Equal(t, PubKey("carol"), union[2].ToNode)
}

func TestUnionChannelsEmpty(t *testing.T) {
	require.Empty(t, UnionChannels())
	require.Empty(t, UnionChannels(nil, nil))
}

func TestPolicyFor(t *testing.T) {
	policy := &ChannelPolicy{
		ChanPoint: testChanPoint(t, 0),
		Policies: []*RoutingPolicy{
			nil,
			{PubKey: "self", TimeLockDelta: 40},
			{PubKey: "peer", TimeLockDelta: 144},
		},
	}

	require.Equal(t, uint32(40), policy.PolicyFor("self").TimeLockDelta)
	require.Equal(t, uint32(144), policy.PolicyFor("peer").TimeLockDelta)
	require.Nil(t, policy.PolicyFor("other"))
}

func TestErrorsUnwrap(t *testing.T) {
	err := error(NodeQueryError{Query: "get channel", Err: ErrNotFound})
	require.ErrorIs(t, err, ErrNotFound)

	var queryErr NodeQueryError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &queryErr)
	require.Equal(t, "get channel", queryErr.Query)

	updateErr := error(UpdateError{ChanPoint: testChanPoint(t, 4), Attempts: 3, Err: ErrNotFound})
	require.ErrorIs(t, updateErr, ErrNotFound)
	require.Contains(t, updateErr.Error(), testTxId+":4")
}
