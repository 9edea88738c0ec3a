package services

import (
	"context"
	"math/rand"
	"testing"

	"prizepool/domain/entities"
	"prizepool/events"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawService_ClaimRewardsPreconditions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		sender  string
		time    uint64
		stop    bool
		wantErr error
	}{
		{"not the triggerer", adminAddr, 700, false, entities.ErrNotTriggerer},
		{"window still open", triggererAddr, 600, false, entities.ErrWindowNotDue},
		{"stopped", triggererAddr, 700, true, entities.ErrContractStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newPool(t)
			if tt.stop {
				require.NoError(t, h.lifecycle.Stop(ctx, at(adminAddr, 1)))
			}
			before := h.window(t)

			_, err := h.draws.ClaimRewards(ctx, at(tt.sender, tt.time))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, h.window(t))
		})
	}
}

func TestDrawService_ClaimRewardsWithoutEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newPool(t)
	h.yield.SetPendingReward(1_000)

	outcome, err := h.draws.ClaimRewards(ctx, at(triggererAddr, 700))
	require.NoError(t, err)
	assert.Equal(t, entities.DrawStatusNoEntries, outcome.Status)
	assert.False(t, outcome.HasWinner())

	w := h.window(t)
	assert.Equal(t, uint64(700), w.StartTime)
	assert.Equal(t, uint64(1_300), w.EndTime)
	assert.Empty(t, h.yield.Redeems)
	assert.True(t, h.supply(t).TriggerFeeAccrued.IsZero())
	assert.Len(t, h.events.OfType(events.EventTypeDrawCompleted), 1)
}

func TestDrawService_ClaimRewardsAllZeroWeight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newPool(t)

	// Deposits made at the window's end carry no weight.
	h.deposit(t, "alice", 1_000_000, 601)
	h.deposit(t, "bob", 2_000_000, 650)

	outcome, err := h.draws.ClaimRewards(ctx, at(triggererAddr, 601))
	require.NoError(t, err)
	assert.Equal(t, entities.DrawStatusAllZeroWeight, outcome.Status)
	assert.Equal(t, 2, outcome.Candidates)
	assert.Equal(t, uint64(1_201), h.window(t).EndTime)
	assert.True(t, h.account(t, "alice").TotalWon.IsZero())
}

func TestDrawService_ClaimRewardsPaysWinner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newPool(t)
	h.yield.SetPendingReward(1_000)

	// An empty draw first moves the window to [700, 1300).
	_, err := h.draws.ClaimRewards(ctx, at(triggererAddr, 700))
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		h.deposit(t, "batman", 1_000_000, 700)
	}
	h.deposit(t, "batman", 500_000_000, 700)
	h.deposit(t, "batman", 500_000_000, 700)

	_, err = h.draws.ClaimRewards(ctx, at(triggererAddr, 1_299))
	require.ErrorIs(t, err, entities.ErrWindowNotDue)

	outcome, err := h.draws.ClaimRewards(ctx, at(triggererAddr, 1_300))
	require.NoError(t, err)
	require.True(t, outcome.HasWinner())
	assert.Equal(t, "batman", outcome.Winner)
	assert.Equal(t, amt(11_000), outcome.Prize)
	assert.Equal(t, amt(110), outcome.Fee)
	assert.Equal(t, amt(10_890), outcome.Payout)

	pool := h.supply(t)
	assert.True(t, pool.TotalRestaked.IsZero())
	assert.True(t, pool.PendingRewards.IsZero())
	assert.Equal(t, amt(110), pool.TriggerFeeAccrued)
	assert.Equal(t, amt(1_008_000_000), pool.TotalStaked)
	assert.Equal(t, []uint256.Int{amt(9_000)}, h.yield.Redeems)

	batman := h.account(t, "batman")
	assert.Equal(t, amt(10_890), batman.AvailableForWithdraw)
	assert.Equal(t, amt(10_890), batman.TotalWon)

	records, err := h.query.UserPastRecords(ctx, "batman")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(1_300), records[0].WonAt)

	w := h.window(t)
	assert.Equal(t, uint64(1_300), w.StartTime)
	assert.Equal(t, uint64(1_900), w.EndTime)
	h.assertLedgerConsistent(t)

	// With nothing accrued since, the next draw has no prize and rolls back.
	h.yield.SetPendingReward(0)
	_, err = h.draws.ClaimRewards(ctx, at(triggererAddr, 1_900))
	assert.ErrorIs(t, err, entities.ErrNoRewards)
}

func TestDrawService_SameHistorySameWinner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	run := func() string {
		h := newPool(t)
		h.yield.SetPendingReward(5_000)
		for i, who := range []string{"alice", "bob", "carol", "dave", "erin"} {
			h.deposit(t, who, uint64(i+1)*1_000_000, 0)
		}
		outcome, err := h.draws.ClaimRewards(ctx, at(triggererAddr, 700))
		require.NoError(t, err)
		require.True(t, outcome.HasWinner())
		return outcome.Winner
	}

	first := run()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run())
	}
}

func TestDrawService_WithdrawTriggerFee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newPool(t)
	h.yield.SetPendingReward(100_000)
	h.deposit(t, "alice", 1_000_000, 0)

	_, err := h.draws.WithdrawTriggerFee(ctx, at(triggererAddr, 10))
	assert.ErrorIs(t, err, entities.ErrNoFeeAccrued)

	_, err = h.draws.ClaimRewards(ctx, at(triggererAddr, 700))
	require.NoError(t, err)

	_, err = h.draws.WithdrawTriggerFee(ctx, at("alice", 701))
	assert.ErrorIs(t, err, entities.ErrNotFeeRecipient)

	// Prize is 100,000 pending plus 100,000 observed; 1% goes to the triggerer.
	fee, err := h.draws.WithdrawTriggerFee(ctx, at(triggererAddr, 702))
	require.NoError(t, err)
	assert.Equal(t, amt(2_000), fee)
	require.Len(t, h.token.Transfers, 1)
	assert.Equal(t, triggererAddr, h.token.Transfers[0].Recipient)
	assert.True(t, h.supply(t).TriggerFeeAccrued.IsZero())
}

// TestPoolInvariantsHoldUnderRandomActivity drives a random mix of calls and
// checks the accounting invariants after each one.
func TestPoolInvariantsHoldUnderRandomActivity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newPool(t)
	rng := rand.New(rand.NewSource(7))
	users := []string{"alice", "bob", "carol", "dave"}

	now := uint64(1)
	for step := 0; step < 400; step++ {
		now += uint64(rng.Intn(120))
		user := users[rng.Intn(len(users))]
		h.yield.SetPendingReward(uint64(rng.Intn(5_000)))

		snap := h.store.Snapshot()
		var err error
		switch op := rng.Intn(10); {
		case op < 4:
			_, err = h.staking.Deposit(ctx, at(tokenAddr, now), user, amt(uint64(1+rng.Intn(50))*1_000_000))
		case op < 6:
			delegated := h.account(t, user).AmountDelegated
			if delegated.IsZero() {
				continue
			}
			part := amt(1 + rng.Uint64()%delegated.Uint64())
			_, err = h.staking.TriggerWithdraw(ctx, at(user, now), &part)
		case op < 7:
			_, err = h.staking.Withdraw(ctx, at(user, now), nil)
		case op < 8:
			_, err = h.staking.Redelegate(ctx, at(user, now), nil)
		default:
			_, err = h.draws.ClaimRewards(ctx, at(triggererAddr, now))
		}
		if err != nil {
			// A rejected call leaves no trace, as the host would roll it back.
			h.store.Restore(snap)
		}
		h.assertLedgerConsistent(t)
	}
}
