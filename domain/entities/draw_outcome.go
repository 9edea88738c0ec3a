package entities

import "github.com/holiman/uint256"

// DrawStatus tags how a draw attempt finished.
type DrawStatus string

const (
	DrawStatusWinner        DrawStatus = "winner"
	DrawStatusNoEntries     DrawStatus = "no_entries"
	DrawStatusAllZeroWeight DrawStatus = "all_zero_weight"
)

// DrawOutcome is the result of a draw attempt. Degenerate outcomes are not errors:
// the window still advances and no funds move.
type DrawOutcome struct {
	Status     DrawStatus
	Winner     string
	Prize      uint256.Int
	Fee        uint256.Int
	Payout     uint256.Int
	Candidates int
	NextWindow LotteryWindow
}

// HasWinner reports whether the draw paid a prize.
func (o *DrawOutcome) HasWinner() bool {
	return o.Status == DrawStatusWinner
}
