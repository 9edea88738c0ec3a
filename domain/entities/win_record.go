package entities

import "github.com/holiman/uint256"

// RecentRecordsLimit bounds the recent win history views.
const RecentRecordsLimit = 5

// WinRecord is one prize payout.
type WinRecord struct {
	ID     int64
	Winner string
	Amount uint256.Int
	WonAt  uint64
}
