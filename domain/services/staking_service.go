package services

import (
	"context"
	"fmt"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/domain/ledger"
	"prizepool/domain/utils"
	"prizepool/events"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// stakingService implements deposits and withdrawals
type stakingService struct {
	configRepo     interfaces.PoolConfigRepository
	poolRepo       interfaces.SupplyPoolRepository
	accountRepo    interfaces.UserAccountRepository
	arena          *ledger.Arena
	yieldSource    interfaces.YieldSource
	token          interfaces.TokenTransferer
	eventPublisher interfaces.EventPublisher
}

// NewStakingService creates a new staking service
func NewStakingService(
	configRepo interfaces.PoolConfigRepository,
	poolRepo interfaces.SupplyPoolRepository,
	accountRepo interfaces.UserAccountRepository,
	slotRepo interfaces.StakeSlotRepository,
	yieldSource interfaces.YieldSource,
	token interfaces.TokenTransferer,
	eventPublisher interfaces.EventPublisher,
) interfaces.StakingService {
	return &stakingService{
		configRepo:     configRepo,
		poolRepo:       poolRepo,
		accountRepo:    accountRepo,
		arena:          ledger.NewArena(slotRepo),
		yieldSource:    yieldSource,
		token:          token,
		eventPublisher: eventPublisher,
	}
}

// Deposit stakes amount on behalf of from. The call must come from the pool's token.
func (s *stakingService) Deposit(ctx context.Context, env entities.CallEnv, from string, amount uint256.Int) (*interfaces.DepositResult, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return nil, err
	}
	if err := cfg.Lifecycle.Check(entities.OpDeposit); err != nil {
		return nil, err
	}
	if env.Sender != cfg.Token.Address {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnsupportedToken, env.Sender)
	}
	if from == "" {
		return nil, entities.ErrInvalidAddress
	}
	minimum := entities.AmountOf(entities.MinimumDeposit)
	if amount.Lt(&minimum) {
		return nil, fmt.Errorf("%w: %s < %d", entities.ErrBelowMinimumDeposit, amount.Dec(), entities.MinimumDeposit)
	}

	account, err := loadAccount(ctx, s.accountRepo, from)
	if err != nil {
		return nil, err
	}
	ref, forwarded, err := s.stake(ctx, env, cfg, account, amount)
	if err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.StakeDepositedEvent{
		Address:   from,
		Amount:    amount.Dec(),
		Forwarded: forwarded.Dec(),
		EntryTime: env.BlockTime,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish deposit event: %w", err)
	}

	log.WithFields(log.Fields{
		"address":   from,
		"amount":    utils.FormatShortNotation(amount),
		"forwarded": utils.FormatShortNotation(forwarded),
		"slot":      ref.Index,
	}).Info("Deposit accepted")

	return &interfaces.DepositResult{Entry: ref, Forwarded: forwarded}, nil
}

// stake adds a ledger entry for account and forwards the principal to the staking contract.
func (s *stakingService) stake(ctx context.Context, env entities.CallEnv, cfg *entities.PoolConfig, account *entities.UserAccount, amount uint256.Int) (entities.SlotRef, uint256.Int, error) {
	delegated, err := entities.Add(account.AmountDelegated, amount)
	if err != nil {
		return entities.SlotRef{}, uint256.Int{}, err
	}

	ref, err := s.arena.Insert(ctx, entities.StakeEntry{
		Owner:     account.Address,
		Amount:    amount,
		EntryTime: env.BlockTime,
	})
	if err != nil {
		return entities.SlotRef{}, uint256.Int{}, fmt.Errorf("failed to insert stake entry: %w", err)
	}
	account.AmountDelegated = delegated
	account.Entries = append(account.Entries, ref)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return entities.SlotRef{}, uint256.Int{}, fmt.Errorf("failed to save account: %w", err)
	}

	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return entities.SlotRef{}, uint256.Int{}, err
	}
	observed, err := observePending(ctx, s.yieldSource, cfg, env.BlockHeight)
	if err != nil {
		return entities.SlotRef{}, uint256.Int{}, err
	}
	forwarded, err := pool.ApplyDeposit(amount, observed)
	if err != nil {
		return entities.SlotRef{}, uint256.Int{}, err
	}
	if err := s.poolRepo.Save(ctx, pool); err != nil {
		return entities.SlotRef{}, uint256.Int{}, fmt.Errorf("failed to save supply pool: %w", err)
	}
	if err := s.yieldSource.Deposit(ctx, cfg.StakingContract, forwarded); err != nil {
		return entities.SlotRef{}, uint256.Int{}, fmt.Errorf("failed to queue staking deposit: %w", err)
	}
	return ref, forwarded, nil
}

// TriggerWithdraw unstakes amount (default: all delegated principal) into the
// caller's withdrawable balance, consuming stake entries oldest first.
func (s *stakingService) TriggerWithdraw(ctx context.Context, env entities.CallEnv, amount *uint256.Int) (uint256.Int, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	if err := cfg.Lifecycle.Check(entities.OpTriggerWithdraw); err != nil {
		return uint256.Int{}, err
	}

	account, err := loadAccount(ctx, s.accountRepo, env.Sender)
	if err != nil {
		return uint256.Int{}, err
	}
	requested := account.AmountDelegated
	if amount != nil {
		requested = *amount
	}
	if requested.IsZero() {
		return uint256.Int{}, entities.ErrNothingStaked
	}
	if account.AmountDelegated.Lt(&requested) {
		return uint256.Int{}, fmt.Errorf("%w: requested %s, staked %s",
			entities.ErrInsufficientStake, requested.Dec(), account.AmountDelegated.Dec())
	}

	if err := s.unstake(ctx, account, requested); err != nil {
		return uint256.Int{}, err
	}
	available, err := entities.Add(account.AvailableForWithdraw, requested)
	if err != nil {
		return uint256.Int{}, err
	}
	account.AvailableForWithdraw = available
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save account: %w", err)
	}

	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	observed, err := observePending(ctx, s.yieldSource, cfg, env.BlockHeight)
	if err != nil {
		return uint256.Int{}, err
	}
	if err := pool.ApplyWithdraw(requested, observed); err != nil {
		return uint256.Int{}, err
	}
	if err := s.poolRepo.Save(ctx, pool); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save supply pool: %w", err)
	}
	if err := s.yieldSource.Redeem(ctx, cfg.StakingContract, requested); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to queue staking redeem: %w", err)
	}

	if err := s.eventPublisher.Publish(events.StakeUnwoundEvent{
		Address: env.Sender,
		Amount:  requested.Dec(),
	}); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to publish unstake event: %w", err)
	}

	log.WithFields(log.Fields{
		"address": env.Sender,
		"amount":  utils.FormatShortNotation(requested),
		"entries": len(account.Entries),
	}).Info("Withdraw triggered")

	return requested, nil
}

// unstake removes amount of principal from the account's delegated balance and ledger entries.
func (s *stakingService) unstake(ctx context.Context, account *entities.UserAccount, amount uint256.Int) error {
	delegated, err := entities.Sub(account.AmountDelegated, amount)
	if err != nil {
		return err
	}
	refs, err := ledger.ConsumeFIFO(ctx, s.arena, account.Entries, amount)
	if err != nil {
		return err
	}
	account.AmountDelegated = delegated
	account.Entries = refs
	return nil
}

// Withdraw pays tokens to the caller. Normally only the withdrawable balance may
// leave; when the pool is stopped with withdrawals allowed, delegated principal
// covered by the recovery snapshot may leave as well.
func (s *stakingService) Withdraw(ctx context.Context, env entities.CallEnv, amount *uint256.Int) (uint256.Int, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	if err := cfg.Lifecycle.Check(entities.OpWithdraw); err != nil {
		return uint256.Int{}, err
	}

	account, err := loadAccount(ctx, s.accountRepo, env.Sender)
	if err != nil {
		return uint256.Int{}, err
	}

	withdrawable := account.AvailableForWithdraw
	if cfg.Lifecycle.AllowsPrincipalWithdraw() {
		withdrawable, err = entities.Add(account.AvailableForWithdraw, account.AmountDelegated)
		if err != nil {
			return uint256.Int{}, err
		}
	}
	requested := withdrawable
	if amount != nil {
		requested = *amount
	}
	if requested.IsZero() {
		return uint256.Int{}, entities.ErrNothingToWithdraw
	}
	if withdrawable.Lt(&requested) {
		return uint256.Int{}, fmt.Errorf("%w: requested %s, available %s",
			entities.ErrInsufficientAvailable, requested.Dec(), withdrawable.Dec())
	}

	fromAvailable := entities.Min(requested, account.AvailableForWithdraw)
	principal, err := entities.Sub(requested, fromAvailable)
	if err != nil {
		return uint256.Int{}, err
	}
	account.AvailableForWithdraw, err = entities.Sub(account.AvailableForWithdraw, fromAvailable)
	if err != nil {
		return uint256.Int{}, err
	}
	if !principal.IsZero() {
		if err := s.releaseRecoveredPrincipal(ctx, cfg, account, principal); err != nil {
			return uint256.Int{}, err
		}
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save account: %w", err)
	}

	if err := s.token.Transfer(ctx, cfg.Token, env.Sender, requested); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to queue token transfer: %w", err)
	}
	if err := s.eventPublisher.Publish(events.TokensWithdrawnEvent{
		Address:   env.Sender,
		Amount:    requested.Dec(),
		Principal: principal.Dec(),
	}); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to publish withdraw event: %w", err)
	}

	log.WithFields(log.Fields{
		"address":   env.Sender,
		"amount":    utils.FormatShortNotation(requested),
		"principal": utils.FormatShortNotation(principal),
	}).Info("Tokens withdrawn")

	return requested, nil
}

// releaseRecoveredPrincipal pays principal out of the emergency recovery snapshot.
func (s *stakingService) releaseRecoveredPrincipal(ctx context.Context, cfg *entities.PoolConfig, account *entities.UserAccount, principal uint256.Int) error {
	if cfg.RecoveredFunds.Lt(&principal) {
		return fmt.Errorf("%w: need %s, recovered %s",
			entities.ErrRecoveryShortfall, principal.Dec(), cfg.RecoveredFunds.Dec())
	}
	if err := s.unstake(ctx, account, principal); err != nil {
		return err
	}

	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return err
	}
	if err := pool.ReleasePrincipal(principal); err != nil {
		return err
	}
	if err := s.poolRepo.Save(ctx, pool); err != nil {
		return fmt.Errorf("failed to save supply pool: %w", err)
	}

	recovered, err := entities.Sub(cfg.RecoveredFunds, principal)
	if err != nil {
		return err
	}
	cfg.RecoveredFunds = recovered
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save pool config: %w", err)
	}
	return nil
}

// Redelegate moves amount (default: everything withdrawable) back into stake
// as a new entry dated now.
func (s *stakingService) Redelegate(ctx context.Context, env entities.CallEnv, amount *uint256.Int) (uint256.Int, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	if err := cfg.Lifecycle.Check(entities.OpRedelegate); err != nil {
		return uint256.Int{}, err
	}

	account, err := loadAccount(ctx, s.accountRepo, env.Sender)
	if err != nil {
		return uint256.Int{}, err
	}
	requested := account.AvailableForWithdraw
	if amount != nil {
		requested = *amount
	}
	if requested.IsZero() {
		return uint256.Int{}, entities.ErrNothingToWithdraw
	}
	available, err := entities.Sub(account.AvailableForWithdraw, requested)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: requested %s, available %s",
			entities.ErrInsufficientAvailable, requested.Dec(), account.AvailableForWithdraw.Dec())
	}
	account.AvailableForWithdraw = available

	if _, _, err := s.stake(ctx, env, cfg, account, requested); err != nil {
		return uint256.Int{}, err
	}

	if err := s.eventPublisher.Publish(events.StakeRedelegatedEvent{
		Address: env.Sender,
		Amount:  requested.Dec(),
	}); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to publish redelegate event: %w", err)
	}

	log.WithFields(log.Fields{
		"address": env.Sender,
		"amount":  utils.FormatShortNotation(requested),
	}).Info("Withdrawable balance redelegated")

	return requested, nil
}
