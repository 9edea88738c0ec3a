package services

import (
	"context"
	"testing"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/domain/ledger"
	"prizepool/domain/testhelpers"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const (
	adminAddr     = "secret1admin"
	triggererAddr = "secret1triggerer"
	tokenAddr     = "secret1token"
	stakingAddr   = "secret1staking"
	poolAddr      = "secret1pool"
)

var (
	tokenContract   = entities.Contract{Address: tokenAddr, CodeHash: "tokenhash"}
	stakingContract = entities.Contract{Address: stakingAddr, CodeHash: "stakinghash"}
)

// harness wires every service to one in-memory store.
type harness struct {
	store     *testhelpers.MemoryStore
	yield     *testhelpers.FakeYieldSource
	token     *testhelpers.FakeTokenTransferer
	events    *testhelpers.RecordingPublisher
	staking   interfaces.StakingService
	draws     interfaces.DrawService
	lifecycle interfaces.LifecycleService
	admin     interfaces.AdminService
	query     interfaces.QueryService
	keys      interfaces.ViewingKeyService
	bootstrap interfaces.BootstrapService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:  testhelpers.NewMemoryStore(),
		yield:  &testhelpers.FakeYieldSource{},
		token:  &testhelpers.FakeTokenTransferer{},
		events: &testhelpers.RecordingPublisher{},
	}
	s := h.store
	h.staking = NewStakingService(s.PoolConfigRepository(), s.SupplyPoolRepository(), s.UserAccountRepository(),
		s.StakeSlotRepository(), h.yield, h.token, h.events)
	h.draws = NewDrawService(s.PoolConfigRepository(), s.SupplyPoolRepository(), s.LotteryWindowRepository(),
		s.UserAccountRepository(), s.WinRecordRepository(), s.StakeSlotRepository(), h.yield, h.token, h.events)
	h.lifecycle = NewLifecycleService(s.PoolConfigRepository(), s.SupplyPoolRepository(), h.yield, h.events)
	h.admin = NewAdminService(s.PoolConfigRepository(), s.LotteryWindowRepository(), h.events)
	h.query = NewQueryService(s.PoolConfigRepository(), s.SupplyPoolRepository(), s.LotteryWindowRepository(),
		s.UserAccountRepository(), s.WinRecordRepository(), h.yield)
	h.keys = NewViewingKeyService(s.ViewingKeyRepository(), s.LotteryWindowRepository(), s.PoolConfigRepository())
	h.bootstrap = NewBootstrapService(s.PoolConfigRepository(), s.SupplyPoolRepository(), s.LotteryWindowRepository(), h.yield, h.events)
	return h
}

// newPool returns a harness initialized at time 0 with a 1% fee and 600 second windows.
func newPool(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	_, err := h.bootstrap.Initialize(context.Background(), at(adminAddr, 0), interfaces.InitParams{
		Triggerer:                triggererAddr,
		Token:                    tokenContract,
		StakingContract:          stakingContract,
		StakingViewingKey:        "pool_staking_vk",
		OwnAddress:               poolAddr,
		PrngSeed:                 []byte("I'm Batman"),
		TriggererSharePercentage: 1,
		LotteryDuration:          600,
	})
	require.NoError(t, err)
	return h
}

func at(sender string, blockTime uint64) entities.CallEnv {
	return entities.CallEnv{Sender: sender, BlockHeight: blockTime / 6, BlockTime: blockTime}
}

func amt(v uint64) uint256.Int { return entities.AmountOf(v) }

func ptr(v uint64) *uint256.Int {
	a := amt(v)
	return &a
}

func (h *harness) deposit(t *testing.T, from string, amount uint64, blockTime uint64) {
	t.Helper()
	_, err := h.staking.Deposit(context.Background(), at(tokenAddr, blockTime), from, amt(amount))
	require.NoError(t, err)
}

func (h *harness) account(t *testing.T, address string) *entities.UserAccount {
	t.Helper()
	a, err := h.store.UserAccountRepository().GetByAddress(context.Background(), address)
	require.NoError(t, err)
	if a == nil {
		return entities.NewUserAccount(address)
	}
	return a
}

func (h *harness) supply(t *testing.T) *entities.SupplyPool {
	t.Helper()
	p, err := h.store.SupplyPoolRepository().Get(context.Background())
	require.NoError(t, err)
	return p
}

func (h *harness) config(t *testing.T) *entities.PoolConfig {
	t.Helper()
	c, err := h.store.PoolConfigRepository().Get(context.Background())
	require.NoError(t, err)
	return c
}

func (h *harness) window(t *testing.T) *entities.LotteryWindow {
	t.Helper()
	w, err := h.store.LotteryWindowRepository().Get(context.Background())
	require.NoError(t, err)
	return w
}

// assertLedgerConsistent checks that delegated balances, ledger entries and
// total_staked all agree.
func (h *harness) assertLedgerConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	perOwner := map[string]uint256.Int{}
	var ledgerTotal uint256.Int
	require.NoError(t, h.store.StakeSlotRepository().ForEachOccupied(ctx, func(s *ledger.Slot) error {
		sum, err := entities.Add(perOwner[s.Entry.Owner], s.Entry.Amount)
		require.NoError(t, err)
		perOwner[s.Entry.Owner] = sum
		ledgerTotal, err = entities.Add(ledgerTotal, s.Entry.Amount)
		require.NoError(t, err)
		return nil
	}))

	var delegatedTotal uint256.Int
	for _, a := range h.store.Accounts() {
		owned := perOwner[a.Address]
		require.Equal(t, owned.Dec(), a.AmountDelegated.Dec(), "account %s", a.Address)
		var err error
		delegatedTotal, err = entities.Add(delegatedTotal, a.AmountDelegated)
		require.NoError(t, err)
	}

	pool := h.supply(t)
	require.Equal(t, pool.TotalStaked.Dec(), delegatedTotal.Dec(), "total staked vs delegated")
	require.Equal(t, pool.TotalStaked.Dec(), ledgerTotal.Dec(), "total staked vs ledger")
}
