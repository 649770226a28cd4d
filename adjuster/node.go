package adjuster

import (
	"context"

	"github.com/the-lightning-land/feeadjust/fdb"
)

// Node is the view of a lightning node the adjuster reads from and writes
// fee policies to. lndc.Client implements it against lnd.
type Node interface {
	Channels(ctx context.Context) ([]*fdb.Channel, error)
	PendingChannels(ctx context.Context) ([]*fdb.Channel, error)
	IdentityPubKey(ctx context.Context) (fdb.PubKey, error)
	FeeRates(ctx context.Context) ([]*fdb.FeeRate, error)

	// ChannelPolicy returns fdb.ErrNotFound when the channel has no
	// announced policy.
	ChannelPolicy(ctx context.Context, channel *fdb.Channel) (*fdb.ChannelPolicy, error)

	NodeAlias(ctx context.Context, pubKey fdb.PubKey) (string, error)
	UpdateChannelFee(ctx context.Context, update *fdb.FeeUpdate) error
}
