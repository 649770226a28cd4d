package adjuster

import (
	"context"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()

	calls := 0
	attempts, err := Retry{Interval: time.Minute, Attempts: 5}.Do(context.Background(),
		instantClock{now: testNow}, logger, func() error {
			calls++
			if calls < 3 {
				return errors.New("temporary failure")
			}
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.Equal(t, logrus.ErrorLevel, entry.Level)
		require.Equal(t, "Fri Mar 1 12:01:00", entry.Data["next_retry"])
		require.EqualError(t, entry.Data[logrus.ErrorKey].(error), "temporary failure")
	}
}

func TestRetryExhausted(t *testing.T) {
	logger, hook := test.NewNullLogger()

	calls := 0
	attempts, err := Retry{Interval: time.Minute, Attempts: 3}.Do(context.Background(),
		instantClock{now: testNow}, logger, func() error {
			calls++
			return errors.Errorf("failure %d", calls)
		})
	require.EqualError(t, err, "failure 3")
	require.Equal(t, 3, attempts)
	require.Equal(t, 3, calls)

	last := hook.LastEntry()
	require.Equal(t, "Giving up", last.Message)
	require.NotContains(t, last.Data, "next_retry")
}

func TestRetryStopsOnCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	attempts, err := Retry{Interval: time.Hour, Attempts: 10}.Do(ctx,
		blockingClock{}, logger, func() error {
			calls++
			return errors.New("failure")
		})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
	require.Equal(t, 1, calls)
}

// blockingClock never ticks.
type blockingClock struct{}

func (blockingClock) Now() time.Time {
	return testNow
}

func (blockingClock) TickAfter(time.Duration) <-chan time.Time {
	return nil
}
