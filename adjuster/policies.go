package adjuster

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/feeadjust/fdb"
)

// fetchPolicies gets the announced policies of all channels. Channels that
// the node reports as not found are left out.
func (a *Adjuster) fetchPolicies(ctx context.Context, node Node, channels []*fdb.Channel) ([]*fdb.ChannelPolicy, error) {
	results := make([]*fdb.ChannelPolicy, len(channels))

	group := a.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for i, channel := range channels {
		i, channel := i, channel

		group.SubmitErr(func() error {
			policy, err := node.ChannelPolicy(groupCtx, channel)
			if errors.Is(err, fdb.ErrNotFound) {
				return nil
			}

			if err != nil {
				return fdb.NodeQueryError{Query: "get channel policy of " + channel.ChanPoint.String(), Err: err}
			}

			results[i] = policy
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var policies []*fdb.ChannelPolicy
	for _, policy := range results {
		if policy != nil {
			policies = append(policies, policy)
		}
	}

	return policies, nil
}
