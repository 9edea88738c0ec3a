// Package draw selects a lottery winner from stake entries.
package draw

import (
	"prizepool/domain/entities"

	"github.com/holiman/uint256"
)

// weightScale is the fixed-point scale for the fraction of a window an entry was held.
const weightScale = 1_000_000

// Weight is an entry's odds in the window: full amount after a whole window
// in the pool, zero for entries made at or after the end. Below a whole window
// the amount in whole millions is scaled by the held fraction, so remainders
// under a million carry no weight.
func Weight(entry entities.StakeEntry, window entities.LotteryWindow) uint256.Int {
	if entry.EntryTime >= window.EndTime {
		return uint256.Int{}
	}
	held := window.EndTime - entry.EntryTime
	if window.Duration == 0 || held >= window.Duration {
		return entry.Amount
	}

	scale := uint256.NewInt(weightScale)
	var units, fraction, w uint256.Int
	units.Div(&entry.Amount, scale)
	// held < duration, so the fraction never exceeds weightScale
	fraction.Mul(uint256.NewInt(held), scale)
	fraction.Div(&fraction, uint256.NewInt(window.Duration))
	if _, overflow := w.MulOverflow(&units, &fraction); overflow {
		return entry.Amount
	}
	return w
}
