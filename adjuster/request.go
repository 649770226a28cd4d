package adjuster

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/feeadjust/fdb"
)

// Request is a single fee adjustment run. Without a FeeRate the run only
// reports the current fees.
type Request struct {
	Node    Node
	Logger  log.FieldLogger
	Targets []string
	FeeRate *uint32
}

func (r *Request) validate() error {
	if r == nil || r.Node == nil {
		return fdb.InvalidArgumentError{Field: "node"}
	}

	if r.Logger == nil {
		return fdb.InvalidArgumentError{Field: "logger"}
	}

	for _, target := range r.Targets {
		if strings.TrimSpace(target) == "" {
			return fdb.InvalidArgumentError{Field: "peer alias or public key"}
		}
	}

	return nil
}
