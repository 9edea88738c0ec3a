package entities

import "fmt"

// MaxBlockValue bounds block heights and times. With MaxLotteryDuration added it
// still fits a signed 64-bit column.
const MaxBlockValue uint64 = 1 << 62

// CallEnv is the host-supplied context of a single call.
type CallEnv struct {
	Sender      string
	BlockHeight uint64
	BlockTime   uint64
}

// Validate rejects block fields outside the storable range.
func (e CallEnv) Validate() error {
	if e.BlockHeight > MaxBlockValue || e.BlockTime > MaxBlockValue {
		return fmt.Errorf("%w: block height %d or time %d out of range", ErrInvalidMessage, e.BlockHeight, e.BlockTime)
	}
	return nil
}
