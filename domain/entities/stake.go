package entities

import "github.com/holiman/uint256"

// StakeEntry is one deposit's remaining principal and the time it entered the pool.
type StakeEntry struct {
	Owner     string
	Amount    uint256.Int
	EntryTime uint64
}

// SlotRef is a generational handle to a stake ledger slot.
type SlotRef struct {
	Index      uint64 `json:"index"`
	Generation uint64 `json:"generation"`
}
