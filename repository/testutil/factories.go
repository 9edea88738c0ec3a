package testutil

import (
	"prizepool/domain/entities"
	"prizepool/domain/ledger"

	"github.com/holiman/uint256"
)

// CreateTestPoolConfig returns a running pool config with a 1% trigger fee
func CreateTestPoolConfig() *entities.PoolConfig {
	return &entities.PoolConfig{
		Admin:                    "secret1admin",
		Triggerer:                "secret1triggerer",
		TriggererSharePercentage: 1,
		Token:                    entities.Contract{Address: "secret1token", CodeHash: "tokenhash"},
		StakingContract:          entities.Contract{Address: "secret1staking", CodeHash: "stakinghash"},
		StakingViewingKey:        "pool_vk",
		OwnAddress:               "secret1pool",
		Lifecycle:                entities.LifecycleRunning,
	}
}

// CreateTestWindow returns the first window of a pool initialized at now
func CreateTestWindow(now uint64) *entities.LotteryWindow {
	return entities.NewLotteryWindow(entities.DeriveSeed([]byte("test seed")), now, entities.DefaultLotteryDuration)
}

// CreateTestSlot returns an occupied slot
func CreateTestSlot(index uint64, owner string, amount uint64, entryTime uint64) *ledger.Slot {
	return &ledger.Slot{
		Index:    index,
		Occupied: true,
		Entry: entities.StakeEntry{
			Owner:     owner,
			Amount:    entities.AmountOf(amount),
			EntryTime: entryTime,
		},
	}
}

// MaxAmount is the largest amount a NUMERIC(78,0) column must round-trip
func MaxAmount() uint256.Int {
	var max uint256.Int
	max.SetAllOne()
	return max
}
