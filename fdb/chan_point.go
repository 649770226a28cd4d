package fdb

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/go-errors/errors"
)

type PubKey string

// Short returns the abbreviated form of the key used when no alias is known.
func (k PubKey) Short() string {
	if len(k) <= 20 {
		return string(k)
	}

	return string(k[:20])
}

// ChanPoint identifies a channel by the outpoint of its funding transaction.
type ChanPoint wire.OutPoint

// NewChanPointFromString parses a channel point in the txid:index format
// used by lnd.
func NewChanPointFromString(str string) (ChanPoint, error) {
	parts := strings.Split(strings.TrimSpace(str), ":")
	if len(parts) != 2 {
		return ChanPoint{}, errors.Errorf("Unable to parse channel point %q with format txid:index", str)
	}

	if len(parts[0]) != chainhash.MaxHashStringSize {
		return ChanPoint{}, errors.Errorf("Unable to parse funding txid %q", parts[0])
	}

	hash, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return ChanPoint{}, errors.Errorf("Could not parse funding txid: %v", err)
	}

	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return ChanPoint{}, errors.Errorf("Could not parse output index: %v", err)
	}

	return ChanPoint{Hash: *hash, Index: uint32(index)}, nil
}

func (c ChanPoint) TxId() string {
	return c.Hash.String()
}

func (c ChanPoint) OutputIndex() uint32 {
	return c.Index
}

func (c ChanPoint) String() string {
	return wire.OutPoint(c).String()
}
