package entities

import (
	"crypto/sha256"
	"encoding/binary"
)

// DefaultLotteryDuration is the window length used when none is configured.
const DefaultLotteryDuration uint64 = 600

// LotteryWindow is the current draw interval plus the randomness state.
type LotteryWindow struct {
	// Entropy is a rolling digest folded with every call's block height and time.
	Entropy   [32]byte
	Seed      [32]byte
	Duration  uint64
	StartTime uint64
	EndTime   uint64
}

// NewLotteryWindow opens the first window one second after now.
// The initial entropy equals the seed.
func NewLotteryWindow(seed [32]byte, now, duration uint64) *LotteryWindow {
	return &LotteryWindow{
		Entropy:   seed,
		Seed:      seed,
		Duration:  duration,
		StartTime: now + 1,
		EndTime:   now + duration + 1,
	}
}

// DeriveSeed hashes the initialization secret into the window seed.
func DeriveSeed(secret []byte) [32]byte {
	return sha256.Sum256(secret)
}

// IsDue reports whether the window has ended at time now.
func (w *LotteryWindow) IsDue(now uint64) bool {
	return now >= w.EndTime
}

// HasStarted reports whether the window has opened at time now.
func (w *LotteryWindow) HasStarted(now uint64) bool {
	return now >= w.StartTime
}

// ValidateDraw fails unless a draw may run at time now.
func (w *LotteryWindow) ValidateDraw(now uint64) error {
	if !w.IsDue(now) {
		return ErrWindowNotDue
	}
	if !w.HasStarted(now) {
		return ErrWindowNotStarted
	}
	return nil
}

// Absorb folds a block height and time into the entropy.
func (w *LotteryWindow) Absorb(height, blockTime uint64) {
	var buf [48]byte
	copy(buf[:], w.Entropy[:])
	binary.BigEndian.PutUint64(buf[32:], height)
	binary.BigEndian.PutUint64(buf[40:], blockTime)
	w.Entropy = sha256.Sum256(buf[:])
}

// Reset opens the next window at now.
func (w *LotteryWindow) Reset(now uint64) {
	w.StartTime = now
	w.EndTime = now + w.Duration
}
