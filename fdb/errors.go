package fdb

import (
	"fmt"

	"github.com/go-errors/errors"
)

// ErrNotFound is returned by a node when a channel has no known policy.
var ErrNotFound = errors.New("Not found")

type InvalidArgumentError struct {
	Field string
}

func (err InvalidArgumentError) Error() string {
	return fmt.Sprintf("Expected %v to adjust fee rates", err.Field)
}

// NodeQueryError is a failed read from the node. Reads are never retried.
type NodeQueryError struct {
	Query string
	Err   error
}

func (err NodeQueryError) Error() string {
	return fmt.Sprintf("Could not %v: %v", err.Query, err.Err)
}

func (err NodeQueryError) Unwrap() error {
	return err.Err
}

// UpdateError carries the last error of a fee update that ran out of
// attempts.
type UpdateError struct {
	ChanPoint ChanPoint
	Attempts  int
	Err       error
}

func (err UpdateError) Error() string {
	return fmt.Sprintf("Could not update fees of channel %v after %d attempts: %v",
		err.ChanPoint, err.Attempts, err.Err)
}

func (err UpdateError) Unwrap() error {
	return err.Err
}
