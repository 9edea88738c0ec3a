package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLotteryWindow(t *testing.T) {
	t.Parallel()

	seed := DeriveSeed([]byte("secret"))
	w := NewLotteryWindow(seed, 0, DefaultLotteryDuration)

	assert.Equal(t, uint64(1), w.StartTime)
	assert.Equal(t, uint64(601), w.EndTime)
	assert.Equal(t, seed, w.Entropy)
	assert.Equal(t, seed, w.Seed)
}

func TestLotteryWindow_ValidateDraw(t *testing.T) {
	t.Parallel()

	w := &LotteryWindow{Duration: 600, StartTime: 100, EndTime: 700}

	assert.ErrorIs(t, w.ValidateDraw(699), ErrWindowNotDue)
	assert.NoError(t, w.ValidateDraw(700))
	assert.NoError(t, w.ValidateDraw(10_000))

	// A start time after the end time can only come from a misconfigured window.
	inverted := &LotteryWindow{Duration: 600, StartTime: 900, EndTime: 700}
	assert.ErrorIs(t, inverted.ValidateDraw(800), ErrWindowNotStarted)
}

func TestLotteryWindow_Reset(t *testing.T) {
	t.Parallel()

	w := &LotteryWindow{Duration: 600, StartTime: 1, EndTime: 601}
	w.Reset(1_300)
	assert.Equal(t, uint64(1_300), w.StartTime)
	assert.Equal(t, uint64(1_900), w.EndTime)
}

func TestLotteryWindow_Absorb(t *testing.T) {
	t.Parallel()

	seed := DeriveSeed([]byte("secret"))
	a := NewLotteryWindow(seed, 0, 600)
	b := NewLotteryWindow(seed, 0, 600)

	a.Absorb(10, 1_000)
	b.Absorb(10, 1_000)
	assert.Equal(t, a.Entropy, b.Entropy)
	assert.NotEqual(t, seed, a.Entropy)

	b.Absorb(11, 1_006)
	assert.NotEqual(t, a.Entropy, b.Entropy)

	// Order matters.
	c := NewLotteryWindow(seed, 0, 600)
	c.Absorb(11, 1_006)
	c.Absorb(10, 1_000)
	assert.NotEqual(t, b.Entropy, c.Entropy)
}
