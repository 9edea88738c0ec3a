package entities

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v uint64) uint256.Int { return AmountOf(v) }

func TestTriggerFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		prize uint64
		share uint64
		want  uint64
	}{
		{"one percent", 1_000_000, 1, 10_000},
		{"zero share", 1_000_000, 0, 0},
		{"full share", 1_000, 100, 1_000},
		{"rounds down", 99, 1, 0},
		{"three percent of thousand", 1_000, 3, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fee, err := TriggerFee(amt(tt.prize), tt.share)
			require.NoError(t, err)
			assert.Equal(t, amt(tt.want), fee)
		})
	}
}

func TestSupplyPool_ApplyDeposit(t *testing.T) {
	t.Parallel()

	pool := &SupplyPool{}

	forward, err := pool.ApplyDeposit(amt(1_000_000), amt(0))
	require.NoError(t, err)
	assert.Equal(t, amt(1_000_000), forward)
	assert.Equal(t, amt(1_000_000), pool.TotalStaked)
	assert.True(t, pool.TotalRestaked.IsZero())

	// The reward observed on the first deposit is forwarded by the second.
	pool.PendingRewards = amt(1_000)
	forward, err = pool.ApplyDeposit(amt(2_000_000), amt(500))
	require.NoError(t, err)
	assert.Equal(t, amt(2_001_000), forward)
	assert.Equal(t, amt(3_000_000), pool.TotalStaked)
	assert.Equal(t, amt(1_000), pool.TotalRestaked)
	assert.Equal(t, amt(500), pool.PendingRewards)
}

func TestSupplyPool_ApplyWithdraw(t *testing.T) {
	t.Parallel()

	t.Run("reduces stake and accumulates reward", func(t *testing.T) {
		t.Parallel()
		pool := &SupplyPool{TotalStaked: amt(5_000_000), PendingRewards: amt(10)}
		require.NoError(t, pool.ApplyWithdraw(amt(2_000_000), amt(15)))
		assert.Equal(t, amt(3_000_000), pool.TotalStaked)
		assert.Equal(t, amt(25), pool.PendingRewards)
	})

	t.Run("underflow leaves pool untouched", func(t *testing.T) {
		t.Parallel()
		pool := &SupplyPool{TotalStaked: amt(1), PendingRewards: amt(10)}
		err := pool.ApplyWithdraw(amt(2), amt(15))
		assert.ErrorIs(t, err, ErrUnderflow)
		assert.Equal(t, amt(1), pool.TotalStaked)
		assert.Equal(t, amt(10), pool.PendingRewards)
	})
}

func TestSupplyPool_SettleDraw(t *testing.T) {
	t.Parallel()

	t.Run("splits prize and empties reward buckets", func(t *testing.T) {
		t.Parallel()
		pool := &SupplyPool{
			TotalStaked:    amt(1_008_000_000),
			TotalRestaked:  amt(9_000),
			PendingRewards: amt(1_000),
		}
		s, err := pool.SettleDraw(amt(1_000), 1)
		require.NoError(t, err)
		assert.Equal(t, amt(11_000), s.Prize)
		assert.Equal(t, amt(110), s.Fee)
		assert.Equal(t, amt(10_890), s.Payout)
		assert.Equal(t, amt(9_000), s.Redeem)
		assert.True(t, pool.TotalRestaked.IsZero())
		assert.True(t, pool.PendingRewards.IsZero())
		assert.Equal(t, amt(110), pool.TriggerFeeAccrued)
		assert.Equal(t, amt(1_008_000_000), pool.TotalStaked)
	})

	t.Run("zero prize is rejected", func(t *testing.T) {
		t.Parallel()
		pool := &SupplyPool{TotalStaked: amt(1_000_000)}
		_, err := pool.SettleDraw(amt(0), 1)
		assert.ErrorIs(t, err, ErrNoRewards)
	})

	t.Run("full fee share leaves nothing to pay", func(t *testing.T) {
		t.Parallel()
		pool := &SupplyPool{PendingRewards: amt(100)}
		_, err := pool.SettleDraw(amt(0), 100)
		assert.ErrorIs(t, err, ErrNoRewards)
		assert.Equal(t, amt(100), pool.PendingRewards)
	})

	t.Run("fee accrual is overwritten", func(t *testing.T) {
		t.Parallel()
		pool := &SupplyPool{PendingRewards: amt(1_000), TriggerFeeAccrued: amt(7)}
		_, err := pool.SettleDraw(amt(0), 2)
		require.NoError(t, err)
		assert.Equal(t, amt(20), pool.TriggerFeeAccrued)
	})
}

func TestSupplyPool_TakeTriggerFee(t *testing.T) {
	t.Parallel()

	pool := &SupplyPool{TriggerFeeAccrued: amt(30)}
	fee, err := pool.TakeTriggerFee()
	require.NoError(t, err)
	assert.Equal(t, amt(30), fee)

	_, err = pool.TakeTriggerFee()
	assert.ErrorIs(t, err, ErrNoFeeAccrued)
}

func TestSupplyPool_Recovery(t *testing.T) {
	t.Parallel()

	pool := &SupplyPool{
		TotalStaked:    amt(10_000_000),
		TotalRestaked:  amt(3_000),
		PendingRewards: amt(200),
	}

	rec, err := pool.BeginRecovery(amt(50))
	require.NoError(t, err)
	assert.Equal(t, amt(10_003_000), rec.Redeem)
	assert.Equal(t, amt(10_003_250), rec.Snapshot)
	assert.Equal(t, amt(250), pool.PendingRewards)

	require.NoError(t, pool.CompleteRecovery(amt(5)))
	assert.Equal(t, amt(3_250), pool.TotalRestaked)
	assert.Equal(t, amt(5), pool.PendingRewards)

	// Principal plus restaked equals what was sent back.
	total, err := Add(pool.TotalStaked, pool.TotalRestaked)
	require.NoError(t, err)
	assert.Equal(t, rec.Snapshot, total)
}

func TestSupplyPool_TotalRewards(t *testing.T) {
	t.Parallel()

	pool := &SupplyPool{TotalRestaked: amt(9_000), PendingRewards: amt(1_000)}
	total, err := pool.TotalRewards(amt(1_000))
	require.NoError(t, err)
	assert.Equal(t, amt(11_000), total)
}
