package draw

import (
	"testing"

	"prizepool/domain/entities"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v uint64) uint256.Int { return entities.AmountOf(v) }

func TestWeight(t *testing.T) {
	t.Parallel()

	window := entities.LotteryWindow{Duration: 600, StartTime: 700, EndTime: 1_300}

	tests := []struct {
		name      string
		entryTime uint64
		amount    uint64
		want      uint64
	}{
		{"held a full window", 0, 1_000_000, 1_000_000},
		{"held exactly one duration", 700, 1_000_000, 1_000_000},
		{"held half a window", 1_000, 1_000_000, 500_000},
		{"truncates amount to whole millions", 1_000, 1_500_000, 500_000},
		{"truncates before scaling", 1_100, 1_999_999, 333_333},
		{"held one second", 1_299, 600, 0},
		{"held one second with a million", 1_299, 1_000_000, 1_666},
		{"entered at the end", 1_300, 1_000_000, 0},
		{"entered after the end", 2_000, 1_000_000, 0},
		{"amount below a million", 700, 999_999, 999_999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Weight(entities.StakeEntry{Amount: amt(tt.amount), EntryTime: tt.entryTime}, window)
			assert.Equal(t, amt(tt.want), got)
		})
	}
}

func TestRand_Deterministic(t *testing.T) {
	t.Parallel()

	key := DeriveKey(entities.DeriveSeed([]byte("seed")), [32]byte{1})
	a, err := NewRand(key)
	require.NoError(t, err)
	b, err := NewRand(key)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}

	other, err := NewRand(DeriveKey(entities.DeriveSeed([]byte("seed")), [32]byte{2}))
	require.NoError(t, err)
	fresh, err := NewRand(key)
	require.NoError(t, err)
	assert.NotEqual(t, fresh.Uint64(), other.Uint64())
}

func TestRand_BelowStaysInRange(t *testing.T) {
	t.Parallel()

	r, err := NewRand([32]byte{9})
	require.NoError(t, err)

	for _, bound := range []uint64{1, 2, 3, 7, 1_000, 1 << 40} {
		n := amt(bound)
		for i := 0; i < 200; i++ {
			v := r.Below(n)
			assert.True(t, v.Lt(&n), "value %s not below %d", v.Dec(), bound)
		}
	}
}

func TestWeightedIndex_SkipsZeroWeights(t *testing.T) {
	t.Parallel()

	idx, err := NewWeightedIndex([]uint256.Int{amt(0), amt(5), amt(0), amt(5), amt(0)})
	require.NoError(t, err)
	assert.Equal(t, amt(10), idx.Total())

	r, err := NewRand([32]byte{3})
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		got := idx.Sample(r)
		assert.Contains(t, []int{1, 3}, got)
	}
}

func TestWeightedIndex_Proportional(t *testing.T) {
	t.Parallel()

	idx, err := NewWeightedIndex([]uint256.Int{amt(1), amt(3)})
	require.NoError(t, err)

	r, err := NewRand([32]byte{42})
	require.NoError(t, err)

	counts := [2]int{}
	for i := 0; i < 4_000; i++ {
		counts[idx.Sample(r)]++
	}
	assert.InDelta(t, 3_000, counts[1], 300)
}

func TestPick(t *testing.T) {
	t.Parallel()

	window := entities.LotteryWindow{Duration: 600, StartTime: 700, EndTime: 1_300}
	key := DeriveKey([32]byte{1}, [32]byte{2})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()
		winner, status, err := Pick(nil, key)
		require.NoError(t, err)
		assert.Nil(t, winner)
		assert.Equal(t, entities.DrawStatusNoEntries, status)
	})

	t.Run("all entries too young", func(t *testing.T) {
		t.Parallel()
		candidates := []Candidate{
			NewCandidate(entities.SlotRef{Index: 0}, entities.StakeEntry{Owner: "a", Amount: amt(10), EntryTime: 1_300}, window),
			NewCandidate(entities.SlotRef{Index: 1}, entities.StakeEntry{Owner: "b", Amount: amt(10), EntryTime: 1_400}, window),
		}
		winner, status, err := Pick(candidates, key)
		require.NoError(t, err)
		assert.Nil(t, winner)
		assert.Equal(t, entities.DrawStatusAllZeroWeight, status)
	})

	t.Run("same inputs give the same winner", func(t *testing.T) {
		t.Parallel()
		candidates := []Candidate{
			NewCandidate(entities.SlotRef{Index: 0}, entities.StakeEntry{Owner: "a", Amount: amt(10), EntryTime: 0}, window),
			NewCandidate(entities.SlotRef{Index: 1}, entities.StakeEntry{Owner: "b", Amount: amt(10), EntryTime: 0}, window),
			NewCandidate(entities.SlotRef{Index: 2}, entities.StakeEntry{Owner: "c", Amount: amt(10), EntryTime: 0}, window),
		}
		first, status, err := Pick(candidates, key)
		require.NoError(t, err)
		require.Equal(t, entities.DrawStatusWinner, status)

		for i := 0; i < 10; i++ {
			again, _, err := Pick(candidates, key)
			require.NoError(t, err)
			assert.Equal(t, first.Entry.Owner, again.Entry.Owner)
		}
	})

	t.Run("single weighted entry always wins", func(t *testing.T) {
		t.Parallel()
		candidates := []Candidate{
			NewCandidate(entities.SlotRef{Index: 0}, entities.StakeEntry{Owner: "late", Amount: amt(10), EntryTime: 5_000}, window),
			NewCandidate(entities.SlotRef{Index: 1}, entities.StakeEntry{Owner: "early", Amount: amt(1), EntryTime: 0}, window),
		}
		winner, status, err := Pick(candidates, key)
		require.NoError(t, err)
		assert.Equal(t, entities.DrawStatusWinner, status)
		assert.Equal(t, "early", winner.Entry.Owner)
	})
}
