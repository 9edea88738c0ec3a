package services

import (
	"context"
	"fmt"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"

	"github.com/holiman/uint256"
)

// queryService answers read-only questions
type queryService struct {
	configRepo  interfaces.PoolConfigRepository
	poolRepo    interfaces.SupplyPoolRepository
	windowRepo  interfaces.LotteryWindowRepository
	accountRepo interfaces.UserAccountRepository
	winRepo     interfaces.WinRecordRepository
	yieldSource interfaces.YieldSource
}

// NewQueryService creates a new query service
func NewQueryService(
	configRepo interfaces.PoolConfigRepository,
	poolRepo interfaces.SupplyPoolRepository,
	windowRepo interfaces.LotteryWindowRepository,
	accountRepo interfaces.UserAccountRepository,
	winRepo interfaces.WinRecordRepository,
	yieldSource interfaces.YieldSource,
) interfaces.QueryService {
	return &queryService{
		configRepo:  configRepo,
		poolRepo:    poolRepo,
		windowRepo:  windowRepo,
		accountRepo: accountRepo,
		winRepo:     winRepo,
		yieldSource: yieldSource,
	}
}

func (s *queryService) LotteryInfo(ctx context.Context) (*interfaces.LotteryInfo, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return nil, err
	}
	window, err := loadWindow(ctx, s.windowRepo)
	if err != nil {
		return nil, err
	}
	return &interfaces.LotteryInfo{
		StartTime:             window.StartTime,
		EndTime:               window.EndTime,
		Duration:              window.Duration,
		IsStopped:             cfg.Lifecycle.IsStopped(),
		IsStoppedWithWithdraw: cfg.Lifecycle.AllowsPrincipalWithdraw(),
	}, nil
}

// TotalRewards is the prize the next draw would pay before fees, as seen at height.
func (s *queryService) TotalRewards(ctx context.Context, height uint64) (uint256.Int, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	observed, err := observePending(ctx, s.yieldSource, cfg, height)
	if err != nil {
		return uint256.Int{}, err
	}
	return pool.TotalRewards(observed)
}

func (s *queryService) TotalDeposits(ctx context.Context) (uint256.Int, error) {
	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	return pool.TotalStaked, nil
}

func (s *queryService) ContractStatus(ctx context.Context) (*interfaces.ContractStatus, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return nil, err
	}
	return &interfaces.ContractStatus{IsStopped: cfg.Lifecycle.IsStopped()}, nil
}

func (s *queryService) RewardToken(ctx context.Context) (*entities.Contract, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return nil, err
	}
	token := cfg.Token
	return &token, nil
}

func (s *queryService) Balance(ctx context.Context, address string) (uint256.Int, error) {
	account, err := loadAccount(ctx, s.accountRepo, address)
	if err != nil {
		return uint256.Int{}, err
	}
	return account.AmountDelegated, nil
}

func (s *queryService) AvailableForWithdraw(ctx context.Context, address string) (uint256.Int, error) {
	account, err := loadAccount(ctx, s.accountRepo, address)
	if err != nil {
		return uint256.Int{}, err
	}
	return account.AvailableForWithdraw, nil
}

func (s *queryService) UserPastRecords(ctx context.Context, address string) ([]*entities.WinRecord, error) {
	records, err := s.winRepo.GetRecentByWinner(ctx, address, entities.RecentRecordsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent records: %w", err)
	}
	return records, nil
}

func (s *queryService) UserAllPastRecords(ctx context.Context, address string) ([]*entities.WinRecord, error) {
	records, err := s.winRepo.GetAllByWinner(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	return records, nil
}

func (s *queryService) PastRecords(ctx context.Context) ([]*entities.WinRecord, error) {
	records, err := s.winRepo.GetRecent(ctx, entities.RecentRecordsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent records: %w", err)
	}
	return records, nil
}

func (s *queryService) PastAllRecords(ctx context.Context) ([]*entities.WinRecord, error) {
	records, err := s.winRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	return records, nil
}
