package repository

import (
	"context"
	"testing"

	"prizepool/domain/entities"
	"prizepool/domain/ledger"
	"prizepool/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeSlotRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewStakeSlotRepository(testDB.DB)
	ctx := context.Background()

	count, err := repo.SlotCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	vacant, err := repo.VacantSlot(ctx)
	require.NoError(t, err)
	assert.Nil(t, vacant)

	for i, owner := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.PutSlot(ctx, testutil.CreateTestSlot(uint64(i), owner, uint64(i+1)*1_000_000, 100)))
	}

	slot, err := repo.GetSlot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, testutil.CreateTestSlot(1, "bob", 2_000_000, 100), slot)

	missing, err := repo.GetSlot(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Vacate slots 2 and 1; the lowest index is reused first.
	for _, idx := range []uint64{2, 1} {
		require.NoError(t, repo.PutSlot(ctx, &ledger.Slot{Index: idx}))
	}
	vacant, err = repo.VacantSlot(ctx)
	require.NoError(t, err)
	require.NotNil(t, vacant)
	assert.Equal(t, uint64(1), vacant.Index)

	var owners []string
	require.NoError(t, repo.ForEachOccupied(ctx, func(s *ledger.Slot) error {
		owners = append(owners, s.Entry.Owner)
		return nil
	}))
	assert.Equal(t, []string{"alice"}, owners)

	count, err = repo.SlotCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestArenaOverPostgres(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	arena := ledger.NewArena(NewStakeSlotRepository(testDB.DB))

	first, err := arena.Insert(ctx, entities.StakeEntry{Owner: "alice", Amount: entities.AmountOf(1_000_000), EntryTime: 1})
	require.NoError(t, err)
	_, err = arena.Insert(ctx, entities.StakeEntry{Owner: "bob", Amount: entities.AmountOf(3_000_000), EntryTime: 2})
	require.NoError(t, err)

	_, err = arena.ReduceOrRemove(ctx, first, entities.AmountOf(1_000_000))
	require.NoError(t, err)

	reused, err := arena.Insert(ctx, entities.StakeEntry{Owner: "carol", Amount: entities.AmountOf(2_000_000), EntryTime: 3})
	require.NoError(t, err)
	assert.Equal(t, entities.SlotRef{Index: 0, Generation: 1}, reused)

	_, err = arena.Get(ctx, first)
	assert.ErrorIs(t, err, entities.ErrStaleSlot)
}

func TestUserAccountRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserAccountRepository(testDB.DB)
	ctx := context.Background()

	account, err := repo.GetByAddress(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, account)

	want := &entities.UserAccount{
		Address:              "alice",
		AmountDelegated:      entities.AmountOf(5_000_000),
		AvailableForWithdraw: entities.AmountOf(1_000),
		TotalWon:             testutil.MaxAmount(),
		Entries: []entities.SlotRef{
			{Index: 4, Generation: 2},
			{Index: 0, Generation: 0},
			{Index: 7, Generation: 1},
		},
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.GetByAddress(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Entries = []entities.SlotRef{}
	want.AmountDelegated = entities.AmountOf(0)
	require.NoError(t, repo.Save(ctx, want))
	got, err = repo.GetByAddress(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWinRecordRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWinRecordRepository(testDB.DB)
	ctx := context.Background()

	empty, err := repo.GetRecent(ctx, entities.RecentRecordsLimit)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := uint64(1); i <= 7; i++ {
		winner := "alice"
		if i%2 == 0 {
			winner = "bob"
		}
		record := &entities.WinRecord{Winner: winner, Amount: entities.AmountOf(i * 100), WonAt: i * 600}
		require.NoError(t, repo.Create(ctx, record))
		assert.Positive(t, record.ID)
	}

	recent, err := repo.GetRecent(ctx, entities.RecentRecordsLimit)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, uint64(4_200), recent[0].WonAt)
	assert.Equal(t, uint64(1_800), recent[4].WonAt)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, uint64(600), all[0].WonAt)

	bobRecent, err := repo.GetRecentByWinner(ctx, "bob", 2)
	require.NoError(t, err)
	require.Len(t, bobRecent, 2)
	assert.Equal(t, entities.AmountOf(600), bobRecent[0].Amount)

	aliceAll, err := repo.GetAllByWinner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceAll, 4)
	assert.Equal(t, entities.AmountOf(100), aliceAll[0].Amount)
}
