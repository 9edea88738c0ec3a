package application

import "time"

// Block is the height and time a call executes at
type Block struct {
	Height uint64
	Time   uint64
}

// BlockSource supplies the block a call runs in when the host does not
type BlockSource interface {
	Current() Block
}

// WallClockBlocks derives blocks from wall-clock time with a fixed block interval
type WallClockBlocks struct {
	intervalSeconds uint64
	now             func() time.Time
}

// NewWallClockBlocks creates a block source. intervalSeconds must be positive.
func NewWallClockBlocks(intervalSeconds uint64) *WallClockBlocks {
	return &WallClockBlocks{intervalSeconds: intervalSeconds, now: time.Now}
}

func (w *WallClockBlocks) Current() Block {
	t := uint64(w.now().Unix())
	return Block{Height: t / w.intervalSeconds, Time: t}
}
