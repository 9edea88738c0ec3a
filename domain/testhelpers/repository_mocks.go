package testhelpers

import (
	"context"

	"prizepool/domain/entities"
	"prizepool/events"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
)

// MockPoolConfigRepository is a mock implementation of PoolConfigRepository
type MockPoolConfigRepository struct {
	mock.Mock
}

func (m *MockPoolConfigRepository) Get(ctx context.Context) (*entities.PoolConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PoolConfig), args.Error(1)
}

func (m *MockPoolConfigRepository) Save(ctx context.Context, cfg *entities.PoolConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// MockSupplyPoolRepository is a mock implementation of SupplyPoolRepository
type MockSupplyPoolRepository struct {
	mock.Mock
}

func (m *MockSupplyPoolRepository) Get(ctx context.Context) (*entities.SupplyPool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SupplyPool), args.Error(1)
}

func (m *MockSupplyPoolRepository) Save(ctx context.Context, pool *entities.SupplyPool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

// MockLotteryWindowRepository is a mock implementation of LotteryWindowRepository
type MockLotteryWindowRepository struct {
	mock.Mock
}

func (m *MockLotteryWindowRepository) Get(ctx context.Context) (*entities.LotteryWindow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotteryWindow), args.Error(1)
}

func (m *MockLotteryWindowRepository) Save(ctx context.Context, window *entities.LotteryWindow) error {
	args := m.Called(ctx, window)
	return args.Error(0)
}

// MockUserAccountRepository is a mock implementation of UserAccountRepository
type MockUserAccountRepository struct {
	mock.Mock
}

func (m *MockUserAccountRepository) GetByAddress(ctx context.Context, address string) (*entities.UserAccount, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserAccount), args.Error(1)
}

func (m *MockUserAccountRepository) Save(ctx context.Context, account *entities.UserAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockWinRecordRepository is a mock implementation of WinRecordRepository
type MockWinRecordRepository struct {
	mock.Mock
}

func (m *MockWinRecordRepository) Create(ctx context.Context, record *entities.WinRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockWinRecordRepository) GetRecent(ctx context.Context, limit int) ([]*entities.WinRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinRecord), args.Error(1)
}

func (m *MockWinRecordRepository) GetAll(ctx context.Context) ([]*entities.WinRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinRecord), args.Error(1)
}

func (m *MockWinRecordRepository) GetRecentByWinner(ctx context.Context, winner string, limit int) ([]*entities.WinRecord, error) {
	args := m.Called(ctx, winner, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinRecord), args.Error(1)
}

func (m *MockWinRecordRepository) GetAllByWinner(ctx context.Context, winner string) ([]*entities.WinRecord, error) {
	args := m.Called(ctx, winner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinRecord), args.Error(1)
}

// MockViewingKeyRepository is a mock implementation of ViewingKeyRepository
type MockViewingKeyRepository struct {
	mock.Mock
}

func (m *MockViewingKeyRepository) GetHash(ctx context.Context, address string) ([]byte, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockViewingKeyRepository) SetHash(ctx context.Context, address string, hash []byte) error {
	args := m.Called(ctx, address, hash)
	return args.Error(0)
}

// MockYieldSource is a mock implementation of YieldSource
type MockYieldSource struct {
	mock.Mock
}

func (m *MockYieldSource) Deposit(ctx context.Context, target entities.Contract, amount uint256.Int) error {
	args := m.Called(ctx, target, amount)
	return args.Error(0)
}

func (m *MockYieldSource) Redeem(ctx context.Context, target entities.Contract, amount uint256.Int) error {
	args := m.Called(ctx, target, amount)
	return args.Error(0)
}

func (m *MockYieldSource) SetViewingKey(ctx context.Context, target entities.Contract, key string) error {
	args := m.Called(ctx, target, key)
	return args.Error(0)
}

func (m *MockYieldSource) QueryPendingReward(ctx context.Context, target entities.Contract, observer, key string, height uint64) (uint256.Int, error) {
	args := m.Called(ctx, target, observer, key, height)
	return args.Get(0).(uint256.Int), args.Error(1)
}

// MockTokenTransferer is a mock implementation of TokenTransferer
type MockTokenTransferer struct {
	mock.Mock
}

func (m *MockTokenTransferer) Transfer(ctx context.Context, token entities.Contract, recipient string, amount uint256.Int) error {
	args := m.Called(ctx, token, recipient, amount)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
