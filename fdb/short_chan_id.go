package fdb

import (
	"fmt"
)

type ChanId uint64

func (c ChanId) String() string {
	return NewShortChanIdFromInt(uint64(c)).String()
}

// ShortChanId is the block:tx:position form of a channel id. Pending
// channels have none yet and carry the zero value.
type ShortChanId struct {
	BlockHeight uint32
	TxIndex     uint32
	TxPosition  uint16
}

func NewShortChanIdFromInt(chanID uint64) ShortChanId {
	return ShortChanId{
		BlockHeight: uint32(chanID >> 40),
		TxIndex:     uint32(chanID>>16) & 0xFFFFFF,
		TxPosition:  uint16(chanID),
	}
}

func (c ShortChanId) String() string {
	return fmt.Sprintf("%dx%dx%d", c.BlockHeight, c.TxIndex, c.TxPosition)
}
