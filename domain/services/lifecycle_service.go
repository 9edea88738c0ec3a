package services

import (
	"context"
	"fmt"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/domain/utils"
	"prizepool/events"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// lifecycleService implements stop/resume and emergency fund recovery
type lifecycleService struct {
	configRepo     interfaces.PoolConfigRepository
	poolRepo       interfaces.SupplyPoolRepository
	yieldSource    interfaces.YieldSource
	eventPublisher interfaces.EventPublisher
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	configRepo interfaces.PoolConfigRepository,
	poolRepo interfaces.SupplyPoolRepository,
	yieldSource interfaces.YieldSource,
	eventPublisher interfaces.EventPublisher,
) interfaces.LifecycleService {
	return &lifecycleService{
		configRepo:     configRepo,
		poolRepo:       poolRepo,
		yieldSource:    yieldSource,
		eventPublisher: eventPublisher,
	}
}

// authorize loads the config and checks the caller and the state gate for op.
func (s *lifecycleService) authorize(ctx context.Context, env entities.CallEnv, op entities.Operation) (*entities.PoolConfig, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireAdmin(env.Sender); err != nil {
		return nil, err
	}
	if err := cfg.Lifecycle.Check(op); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *lifecycleService) transition(ctx context.Context, cfg *entities.PoolConfig, op entities.Operation, next entities.Lifecycle) error {
	previous := cfg.Lifecycle
	cfg.Lifecycle = next
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save pool config: %w", err)
	}
	return s.publish(op, previous, cfg)
}

func (s *lifecycleService) publish(op entities.Operation, previous entities.Lifecycle, cfg *entities.PoolConfig) error {
	if err := s.eventPublisher.Publish(events.LifecycleChangedEvent{
		Action:         string(op),
		OldState:       string(previous),
		NewState:       string(cfg.Lifecycle),
		RecoveredFunds: cfg.RecoveredFunds.Dec(),
	}); err != nil {
		return fmt.Errorf("failed to publish lifecycle event: %w", err)
	}
	log.WithFields(log.Fields{
		"action":    op,
		"oldState":  previous,
		"newState":  cfg.Lifecycle,
		"recovered": utils.FormatShortNotation(cfg.RecoveredFunds),
	}).Info("Pool lifecycle changed")
	return nil
}

// Stop disables deposits, withdraw triggers, draws and admin setters.
func (s *lifecycleService) Stop(ctx context.Context, env entities.CallEnv) error {
	cfg, err := s.authorize(ctx, env, entities.OpStopContract)
	if err != nil {
		return err
	}
	return s.transition(ctx, cfg, entities.OpStopContract, entities.LifecycleStopped)
}

// AllowWithdrawWhenStopped lets users withdraw recovered principal while stopped.
func (s *lifecycleService) AllowWithdrawWhenStopped(ctx context.Context, env entities.CallEnv) error {
	cfg, err := s.authorize(ctx, env, entities.OpAllowWithdrawWhenStopped)
	if err != nil {
		return err
	}
	return s.transition(ctx, cfg, entities.OpAllowWithdrawWhenStopped, entities.LifecycleStoppedAllowWithdraw)
}

// Resume returns the pool to normal operation and clears the recovery snapshot.
func (s *lifecycleService) Resume(ctx context.Context, env entities.CallEnv) error {
	cfg, err := s.authorize(ctx, env, entities.OpResumeContract)
	if err != nil {
		return err
	}
	cfg.RecoveredFunds = uint256.Int{}
	return s.transition(ctx, cfg, entities.OpResumeContract, entities.LifecycleRunning)
}

// EmergencyRedeem pulls all principal and restaked rewards out of the staking
// contract and records the recovered total.
func (s *lifecycleService) EmergencyRedeem(ctx context.Context, env entities.CallEnv) (uint256.Int, error) {
	cfg, err := s.authorize(ctx, env, entities.OpEmergencyRedeem)
	if err != nil {
		return uint256.Int{}, err
	}
	if !cfg.RecoveredFunds.IsZero() {
		return uint256.Int{}, entities.ErrAlreadyRecovered
	}

	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	observed, err := observePending(ctx, s.yieldSource, cfg, env.BlockHeight)
	if err != nil {
		return uint256.Int{}, err
	}
	recovery, err := pool.BeginRecovery(observed)
	if err != nil {
		return uint256.Int{}, err
	}
	if err := s.poolRepo.Save(ctx, pool); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save supply pool: %w", err)
	}
	if err := s.yieldSource.Redeem(ctx, cfg.StakingContract, recovery.Redeem); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to queue staking redeem: %w", err)
	}

	cfg.RecoveredFunds = recovery.Snapshot
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save pool config: %w", err)
	}
	if err := s.publish(entities.OpEmergencyRedeem, cfg.Lifecycle, cfg); err != nil {
		return uint256.Int{}, err
	}
	return recovery.Snapshot, nil
}

// RedelegateToContract sends the recovered funds back to the staking contract.
func (s *lifecycleService) RedelegateToContract(ctx context.Context, env entities.CallEnv) (uint256.Int, error) {
	cfg, err := s.authorize(ctx, env, entities.OpRedelegateToContract)
	if err != nil {
		return uint256.Int{}, err
	}
	if cfg.RecoveredFunds.IsZero() {
		return uint256.Int{}, entities.ErrNothingRecovered
	}

	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	observed, err := observePending(ctx, s.yieldSource, cfg, env.BlockHeight)
	if err != nil {
		return uint256.Int{}, err
	}
	if err := pool.CompleteRecovery(observed); err != nil {
		return uint256.Int{}, err
	}
	if err := s.poolRepo.Save(ctx, pool); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save supply pool: %w", err)
	}

	forwarded := cfg.RecoveredFunds
	if err := s.yieldSource.Deposit(ctx, cfg.StakingContract, forwarded); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to queue staking deposit: %w", err)
	}
	cfg.RecoveredFunds = uint256.Int{}
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save pool config: %w", err)
	}
	if err := s.publish(entities.OpRedelegateToContract, cfg.Lifecycle, cfg); err != nil {
		return uint256.Int{}, err
	}
	return forwarded, nil
}

// ChangeStakingContract points the pool at a different staking contract.
// Funds are not migrated; pair it with an emergency redeem and redelegate.
func (s *lifecycleService) ChangeStakingContract(ctx context.Context, env entities.CallEnv, contract entities.Contract) error {
	cfg, err := s.authorize(ctx, env, entities.OpChangeStakingContract)
	if err != nil {
		return err
	}
	if contract.IsZero() {
		return entities.ErrInvalidAddress
	}
	cfg.StakingContract = contract
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save pool config: %w", err)
	}
	if err := s.yieldSource.SetViewingKey(ctx, contract, cfg.StakingViewingKey); err != nil {
		return fmt.Errorf("failed to queue viewing key registration: %w", err)
	}
	if err := s.eventPublisher.Publish(events.ConfigChangedEvent{
		Field: "staking_contract",
		Value: contract.Address,
	}); err != nil {
		return fmt.Errorf("failed to publish config event: %w", err)
	}
	log.WithField("stakingContract", contract.Address).Info("Staking contract changed")
	return nil
}
