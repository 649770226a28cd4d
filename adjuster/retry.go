package adjuster

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/feeadjust/fdb"
)

const nextRetryLayout = "Mon Jan 2 15:04:05"

// Retry is a fixed interval retry policy.
type Retry struct {
	Interval time.Duration
	Attempts int
}

var DefaultRetry = Retry{
	Interval: 2 * time.Minute,
	Attempts: 360,
}

// Do calls fn until it succeeds, the attempts run out or ctx is done. It
// returns the number of attempts made and the last error.
func (r Retry) Do(ctx context.Context, clk clock.Clock, logger log.FieldLogger, fn func() error) (int, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return attempt, nil
		}

		entry := logger.WithError(err).WithField("attempt", attempt)
		if attempt == attempts {
			entry.Error("Giving up")
			return attempt, err
		}

		nextRetry := clk.Now().Add(r.Interval)
		entry.WithField("next_retry", nextRetry.Format(nextRetryLayout)).Error("Attempt failed")

		select {
		case <-clk.TickAfter(r.Interval):
		case <-ctx.Done():
			return attempt, err
		}
	}

	return attempts, err
}

// applyUpdates writes all fee updates, each retried on its own. The first
// update to run out of attempts fails the whole batch; updates already
// written stay in place.
func (a *Adjuster) applyUpdates(ctx context.Context, node Node, logger log.FieldLogger, updates []*fdb.FeeUpdate) error {
	group := a.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, update := range updates {
		update := update

		group.SubmitErr(func() error {
			updateLogger := logger.WithField("chan_point", update.ChanPoint.String())
			if update.ChanId != 0 {
				updateLogger = updateLogger.WithField("chan_id", update.ChanId.String())
			}

			attempts, err := a.retry.Do(groupCtx, a.clock, updateLogger, func() error {
				return node.UpdateChannelFee(groupCtx, update)
			})
			if err != nil {
				return fdb.UpdateError{ChanPoint: update.ChanPoint, Attempts: attempts, Err: err}
			}

			updateLogger.WithField("fee_rate", update.FeeRatePpm).Info("Updated channel fee")
			return nil
		})
	}

	return group.Wait()
}
