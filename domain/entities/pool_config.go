package entities

import (
	"fmt"

	"github.com/holiman/uint256"
)

// MaxTriggererSharePercentage bounds the draw fee share.
const MaxTriggererSharePercentage uint64 = 100

// MaxLotteryDuration is one hundred years in seconds.
const MaxLotteryDuration uint64 = 100 * 365 * 24 * 60 * 60

// PoolConfig holds the pool's identities, permissions and lifecycle.
type PoolConfig struct {
	Admin                    string
	Triggerer                string
	TriggererSharePercentage uint64
	Token                    Contract
	StakingContract          Contract
	// StakingViewingKey authenticates pending-reward queries against the staking contract.
	StakingViewingKey string
	// OwnAddress is the pool's account at the staking contract.
	OwnAddress string
	Lifecycle  Lifecycle
	// RecoveredFunds is the snapshot taken by an emergency redeem.
	RecoveredFunds uint256.Int
}

// RequireAdmin fails unless sender is the admin.
func (c *PoolConfig) RequireAdmin(sender string) error {
	if sender != c.Admin {
		return ErrNotAdmin
	}
	return nil
}

// RequireTriggerer fails unless sender is the triggerer.
func (c *PoolConfig) RequireTriggerer(sender string) error {
	if sender != c.Triggerer {
		return ErrNotTriggerer
	}
	return nil
}

// CanWithdrawTriggerFee reports whether sender may collect the accrued trigger fee.
func (c *PoolConfig) CanWithdrawTriggerFee(sender string) bool {
	return sender == c.Admin || sender == c.Triggerer
}

// ValidateTriggererShare checks a share percentage.
func ValidateTriggererShare(percentage uint64) error {
	if percentage > MaxTriggererSharePercentage {
		return fmt.Errorf("%w: got %d", ErrInvalidPercentage, percentage)
	}
	return nil
}

// ValidateDuration checks a lottery duration in seconds.
func ValidateDuration(duration uint64) error {
	if duration == 0 || duration > MaxLotteryDuration {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	return nil
}
