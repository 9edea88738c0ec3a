package ledger

import (
	"context"
	"testing"

	"prizepool/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(owner string, amount, at uint64) entities.StakeEntry {
	return entities.StakeEntry{Owner: owner, Amount: entities.AmountOf(amount), EntryTime: at}
}

func TestArena_InsertAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	arena := NewArena(NewMemorySlotStore())

	a, err := arena.Insert(ctx, entry("alice", 100, 1))
	require.NoError(t, err)
	b, err := arena.Insert(ctx, entry("bob", 200, 2))
	require.NoError(t, err)

	assert.Equal(t, entities.SlotRef{Index: 0, Generation: 0}, a)
	assert.Equal(t, entities.SlotRef{Index: 1, Generation: 0}, b)

	got, err := arena.Get(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Owner)
	assert.Equal(t, entities.AmountOf(200), got.Amount)

	_, err = arena.Get(ctx, entities.SlotRef{Index: 7})
	assert.ErrorIs(t, err, entities.ErrSlotNotFound)
}

func TestArena_ReuseBumpsGeneration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	arena := NewArena(NewMemorySlotStore())

	old, err := arena.Insert(ctx, entry("alice", 100, 1))
	require.NoError(t, err)
	_, err = arena.Insert(ctx, entry("bob", 100, 1))
	require.NoError(t, err)

	red, err := arena.ReduceOrRemove(ctx, old, entities.AmountOf(100))
	require.NoError(t, err)
	assert.True(t, red.Vacated)
	assert.True(t, red.Remainder.IsZero())

	reused, err := arena.Insert(ctx, entry("carol", 50, 3))
	require.NoError(t, err)
	assert.Equal(t, entities.SlotRef{Index: 0, Generation: 1}, reused)

	_, err = arena.Get(ctx, old)
	assert.ErrorIs(t, err, entities.ErrStaleSlot)

	_, err = arena.ReduceOrRemove(ctx, old, entities.AmountOf(1))
	assert.ErrorIs(t, err, entities.ErrStaleSlot)

	got, err := arena.Get(ctx, reused)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Owner)
}

func TestArena_ReduceOrRemove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		amount        uint64
		take          uint64
		wantVacated   bool
		wantRemainder uint64
		wantLeft      uint64
	}{
		{"partial", 100, 40, false, 0, 60},
		{"exact", 100, 100, true, 0, 0},
		{"overflowing request", 100, 250, true, 150, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			arena := NewArena(NewMemorySlotStore())
			ref, err := arena.Insert(ctx, entry("alice", tt.amount, 0))
			require.NoError(t, err)

			red, err := arena.ReduceOrRemove(ctx, ref, entities.AmountOf(tt.take))
			require.NoError(t, err)
			assert.Equal(t, tt.wantVacated, red.Vacated)
			assert.Equal(t, entities.AmountOf(tt.wantRemainder), red.Remainder)

			if tt.wantVacated {
				_, err := arena.Get(ctx, ref)
				assert.ErrorIs(t, err, entities.ErrStaleSlot)
				return
			}
			left, err := arena.Get(ctx, ref)
			require.NoError(t, err)
			assert.Equal(t, entities.AmountOf(tt.wantLeft), left.Amount)
		})
	}
}

func TestArena_ForEachSkipsVacant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	arena := NewArena(NewMemorySlotStore())

	refs := make([]entities.SlotRef, 0, 3)
	for _, owner := range []string{"a", "b", "c"} {
		ref, err := arena.Insert(ctx, entry(owner, 10, 0))
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	_, err := arena.ReduceOrRemove(ctx, refs[1], entities.AmountOf(10))
	require.NoError(t, err)

	var owners []string
	require.NoError(t, arena.ForEach(ctx, func(_ entities.SlotRef, e entities.StakeEntry) error {
		owners = append(owners, e.Owner)
		return nil
	}))
	assert.Equal(t, []string{"a", "c"}, owners)
}
