package testhelpers

import (
	"context"
	"errors"
	"sync"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/events"

	"github.com/holiman/uint256"
)

// MemoryUnitOfWorkFactory hands out units of work over one MemoryStore.
// Units of work are serialized like database transactions; a rollback restores
// the store and drops the unit's outbound messages.
type MemoryUnitOfWorkFactory struct {
	Store  *MemoryStore
	Yield  *FakeYieldSource
	Token  *FakeTokenTransferer
	Events *RecordingPublisher

	txMu      sync.Mutex
	mu        sync.Mutex
	commits   int
	rollbacks int
}

// NewMemoryUnitOfWorkFactory returns a factory over an empty store.
func NewMemoryUnitOfWorkFactory() *MemoryUnitOfWorkFactory {
	return &MemoryUnitOfWorkFactory{
		Store:  NewMemoryStore(),
		Yield:  &FakeYieldSource{},
		Token:  &FakeTokenTransferer{},
		Events: &RecordingPublisher{},
	}
}

func (f *MemoryUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &memoryUnitOfWork{factory: f}
}

// Commits is the number of committed units of work.
func (f *MemoryUnitOfWorkFactory) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

// Rollbacks is the number of units of work rolled back after Begin.
func (f *MemoryUnitOfWorkFactory) Rollbacks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rollbacks
}

type memoryUnitOfWork struct {
	factory  *MemoryUnitOfWorkFactory
	snapshot *MemorySnapshot
	pending  []func()
	active   bool
}

func (u *memoryUnitOfWork) Begin(context.Context) error {
	if u.active {
		return errors.New("transaction already started")
	}
	u.factory.txMu.Lock()
	u.snapshot = u.factory.Store.Snapshot()
	u.active = true
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if !u.active {
		return errors.New("no transaction to commit")
	}
	for _, send := range u.pending {
		send()
	}
	u.finish()
	u.factory.mu.Lock()
	u.factory.commits++
	u.factory.mu.Unlock()
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.factory.Store.Restore(u.snapshot)
	u.finish()
	u.factory.mu.Lock()
	u.factory.rollbacks++
	u.factory.mu.Unlock()
	return nil
}

func (u *memoryUnitOfWork) finish() {
	u.pending = nil
	u.snapshot = nil
	u.active = false
	u.factory.txMu.Unlock()
}

func (u *memoryUnitOfWork) enqueue(send func()) {
	u.pending = append(u.pending, send)
}

func (u *memoryUnitOfWork) PoolConfigRepository() interfaces.PoolConfigRepository {
	return u.factory.Store.PoolConfigRepository()
}

func (u *memoryUnitOfWork) SupplyPoolRepository() interfaces.SupplyPoolRepository {
	return u.factory.Store.SupplyPoolRepository()
}

func (u *memoryUnitOfWork) LotteryWindowRepository() interfaces.LotteryWindowRepository {
	return u.factory.Store.LotteryWindowRepository()
}

func (u *memoryUnitOfWork) StakeSlotRepository() interfaces.StakeSlotRepository {
	return u.factory.Store.StakeSlotRepository()
}

func (u *memoryUnitOfWork) UserAccountRepository() interfaces.UserAccountRepository {
	return u.factory.Store.UserAccountRepository()
}

func (u *memoryUnitOfWork) WinRecordRepository() interfaces.WinRecordRepository {
	return u.factory.Store.WinRecordRepository()
}

func (u *memoryUnitOfWork) ViewingKeyRepository() interfaces.ViewingKeyRepository {
	return u.factory.Store.ViewingKeyRepository()
}

func (u *memoryUnitOfWork) EventBus() interfaces.EventPublisher {
	return deferredPublisher{u}
}

func (u *memoryUnitOfWork) YieldSource() interfaces.YieldSource {
	return deferredYieldSource{u}
}

func (u *memoryUnitOfWork) TokenTransferer() interfaces.TokenTransferer {
	return deferredTransferer{u}
}

type deferredPublisher struct{ u *memoryUnitOfWork }

func (p deferredPublisher) Publish(event events.Event) error {
	p.u.enqueue(func() { _ = p.u.factory.Events.Publish(event) })
	return nil
}

// deferredYieldSource queues staking commands until commit; pending-reward
// queries are answered immediately.
type deferredYieldSource struct{ u *memoryUnitOfWork }

func (y deferredYieldSource) Deposit(ctx context.Context, contract entities.Contract, amount uint256.Int) error {
	y.u.enqueue(func() { _ = y.u.factory.Yield.Deposit(ctx, contract, amount) })
	return nil
}

func (y deferredYieldSource) Redeem(ctx context.Context, contract entities.Contract, amount uint256.Int) error {
	y.u.enqueue(func() { _ = y.u.factory.Yield.Redeem(ctx, contract, amount) })
	return nil
}

func (y deferredYieldSource) SetViewingKey(ctx context.Context, contract entities.Contract, key string) error {
	y.u.enqueue(func() { _ = y.u.factory.Yield.SetViewingKey(ctx, contract, key) })
	return nil
}

func (y deferredYieldSource) QueryPendingReward(ctx context.Context, contract entities.Contract, observer, key string, height uint64) (uint256.Int, error) {
	return y.u.factory.Yield.QueryPendingReward(ctx, contract, observer, key, height)
}

type deferredTransferer struct{ u *memoryUnitOfWork }

func (t deferredTransferer) Transfer(ctx context.Context, token entities.Contract, recipient string, amount uint256.Int) error {
	t.u.enqueue(func() { _ = t.u.factory.Token.Transfer(ctx, token, recipient, amount) })
	return nil
}
