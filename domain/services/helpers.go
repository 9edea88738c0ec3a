package services

import (
	"context"
	"fmt"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"

	"github.com/holiman/uint256"
)

func loadConfig(ctx context.Context, repo interfaces.PoolConfigRepository) (*entities.PoolConfig, error) {
	cfg, err := repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool config: %w", err)
	}
	if cfg == nil {
		return nil, entities.ErrNotInitialized
	}
	return cfg, nil
}

func loadSupplyPool(ctx context.Context, repo interfaces.SupplyPoolRepository) (*entities.SupplyPool, error) {
	pool, err := repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load supply pool: %w", err)
	}
	if pool == nil {
		return nil, entities.ErrNotInitialized
	}
	return pool, nil
}

func loadWindow(ctx context.Context, repo interfaces.LotteryWindowRepository) (*entities.LotteryWindow, error) {
	window, err := repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery window: %w", err)
	}
	if window == nil {
		return nil, entities.ErrNotInitialized
	}
	return window, nil
}

// loadAccount returns the stored account or a fresh one for unknown addresses.
func loadAccount(ctx context.Context, repo interfaces.UserAccountRepository, address string) (*entities.UserAccount, error) {
	account, err := repo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", address, err)
	}
	if account == nil {
		account = entities.NewUserAccount(address)
	}
	return account, nil
}

// observePending reads the reward the pool has accrued at the staking contract.
func observePending(ctx context.Context, yield interfaces.YieldSource, cfg *entities.PoolConfig, height uint64) (uint256.Int, error) {
	observed, err := yield.QueryPendingReward(ctx, cfg.StakingContract, cfg.OwnAddress, cfg.StakingViewingKey, height)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("failed to query pending reward: %w", err)
	}
	return observed, nil
}
