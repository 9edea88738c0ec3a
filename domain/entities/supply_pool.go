package entities

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Fee scaling: fee = prize * share * FeeScale / FeeDivisor, so a share of 1 is one percent.
const (
	FeeScale   uint64 = 1_000_000
	FeeDivisor uint64 = 100_000_000
)

// SupplyPool is the pool-wide accounting of principal and reward buckets.
type SupplyPool struct {
	TotalStaked       uint256.Int
	TotalRestaked     uint256.Int
	PendingRewards    uint256.Int
	TriggerFeeAccrued uint256.Int
}

// DrawSettlement is the split of a prize at draw time.
type DrawSettlement struct {
	Prize  uint256.Int
	Fee    uint256.Int
	Payout uint256.Int
	// Redeem is the restaked principal pulled back from the staking contract.
	Redeem uint256.Int
}

// Recovery describes an emergency redeem.
type Recovery struct {
	Redeem   uint256.Int
	Snapshot uint256.Int
}

// ApplyDeposit books a new stake of amount and returns what must be forwarded
// to the staking contract: the deposit plus the reward pulled by the previous interaction.
// The newly observed reward becomes the pending bucket.
func (p *SupplyPool) ApplyDeposit(amount, observed uint256.Int) (uint256.Int, error) {
	staked, err := Add(p.TotalStaked, amount)
	if err != nil {
		return uint256.Int{}, err
	}
	forward, err := Add(amount, p.PendingRewards)
	if err != nil {
		return uint256.Int{}, err
	}
	restaked, err := Add(p.TotalRestaked, p.PendingRewards)
	if err != nil {
		return uint256.Int{}, err
	}
	p.TotalStaked = staked
	p.TotalRestaked = restaked
	p.PendingRewards = observed
	return forward, nil
}

// ApplyWithdraw books an unstake of amount. The reward paid out by the redeem
// interaction joins the pending bucket.
func (p *SupplyPool) ApplyWithdraw(amount, observed uint256.Int) error {
	staked, err := Sub(p.TotalStaked, amount)
	if err != nil {
		return err
	}
	pending, err := Add(p.PendingRewards, observed)
	if err != nil {
		return err
	}
	p.TotalStaked = staked
	p.PendingRewards = pending
	return nil
}

// ReleasePrincipal removes principal that leaves the pool without a redeem,
// as when users withdraw recovered funds while stopped.
func (p *SupplyPool) ReleasePrincipal(amount uint256.Int) error {
	staked, err := Sub(p.TotalStaked, amount)
	if err != nil {
		return err
	}
	p.TotalStaked = staked
	return nil
}

// TriggerFee computes the triggerer's cut of a prize.
func TriggerFee(prize uint256.Int, sharePercentage uint64) (uint256.Int, error) {
	scaled, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(sharePercentage), uint256.NewInt(FeeScale))
	if overflow {
		return uint256.Int{}, fmt.Errorf("%w: fee share %d", ErrOverflow, sharePercentage)
	}
	return MulDiv(prize, *scaled, AmountOf(FeeDivisor))
}

// SettleDraw computes the prize from restaked rewards, pending rewards and the
// reward observed now, then empties both reward buckets. A zero payout is an error.
func (p *SupplyPool) SettleDraw(observed uint256.Int, sharePercentage uint64) (DrawSettlement, error) {
	prize, err := Sum(p.TotalRestaked, p.PendingRewards, observed)
	if err != nil {
		return DrawSettlement{}, err
	}
	fee, err := TriggerFee(prize, sharePercentage)
	if err != nil {
		return DrawSettlement{}, err
	}
	payout, err := Sub(prize, fee)
	if err != nil {
		return DrawSettlement{}, err
	}
	if payout.IsZero() {
		return DrawSettlement{}, ErrNoRewards
	}

	settlement := DrawSettlement{
		Prize:  prize,
		Fee:    fee,
		Payout: payout,
		Redeem: p.TotalRestaked,
	}
	p.TriggerFeeAccrued = fee
	p.PendingRewards = uint256.Int{}
	p.TotalRestaked = uint256.Int{}
	return settlement, nil
}

// TakeTriggerFee empties the accrued trigger fee and returns it.
func (p *SupplyPool) TakeTriggerFee() (uint256.Int, error) {
	if p.TriggerFeeAccrued.IsZero() {
		return uint256.Int{}, ErrNoFeeAccrued
	}
	fee := p.TriggerFeeAccrued
	p.TriggerFeeAccrued = uint256.Int{}
	return fee, nil
}

// TotalRewards is the reward currently attributable to the next draw.
func (p *SupplyPool) TotalRewards(observed uint256.Int) (uint256.Int, error) {
	return Sum(observed, p.TotalRestaked, p.PendingRewards)
}

// BeginRecovery redeems all principal and restaked rewards. The observed reward
// lands with the redeem, so the snapshot covers principal plus every reward bucket.
func (p *SupplyPool) BeginRecovery(observed uint256.Int) (Recovery, error) {
	redeem, err := Add(p.TotalStaked, p.TotalRestaked)
	if err != nil {
		return Recovery{}, err
	}
	pending, err := Add(p.PendingRewards, observed)
	if err != nil {
		return Recovery{}, err
	}
	snapshot, err := Add(redeem, pending)
	if err != nil {
		return Recovery{}, err
	}
	p.PendingRewards = pending
	return Recovery{Redeem: redeem, Snapshot: snapshot}, nil
}

// CompleteRecovery returns the snapshot to the staking contract. Pending rewards
// are folded into the restaked bucket and the newly observed reward becomes pending.
func (p *SupplyPool) CompleteRecovery(observed uint256.Int) error {
	restaked, err := Add(p.TotalRestaked, p.PendingRewards)
	if err != nil {
		return err
	}
	p.TotalRestaked = restaked
	p.PendingRewards = observed
	return nil
}
