package services

import (
	"context"
	"fmt"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/events"

	log "github.com/sirupsen/logrus"
)

// bootstrapService creates the pool state
type bootstrapService struct {
	configRepo     interfaces.PoolConfigRepository
	poolRepo       interfaces.SupplyPoolRepository
	windowRepo     interfaces.LotteryWindowRepository
	yieldSource    interfaces.YieldSource
	eventPublisher interfaces.EventPublisher
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(
	configRepo interfaces.PoolConfigRepository,
	poolRepo interfaces.SupplyPoolRepository,
	windowRepo interfaces.LotteryWindowRepository,
	yieldSource interfaces.YieldSource,
	eventPublisher interfaces.EventPublisher,
) interfaces.BootstrapService {
	return &bootstrapService{
		configRepo:     configRepo,
		poolRepo:       poolRepo,
		windowRepo:     windowRepo,
		yieldSource:    yieldSource,
		eventPublisher: eventPublisher,
	}
}

// Initialize creates the config, an empty supply pool and the first window.
func (s *bootstrapService) Initialize(ctx context.Context, env entities.CallEnv, params interfaces.InitParams) (*entities.LotteryWindow, error) {
	existing, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool config: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrAlreadyInitialized
	}

	if params.Token.IsZero() || params.StakingContract.IsZero() || params.OwnAddress == "" {
		return nil, entities.ErrInvalidAddress
	}
	if err := entities.ValidateTriggererShare(params.TriggererSharePercentage); err != nil {
		return nil, err
	}
	duration := params.LotteryDuration
	if duration == 0 {
		duration = entities.DefaultLotteryDuration
	}
	if err := entities.ValidateDuration(duration); err != nil {
		return nil, err
	}

	admin := params.Admin
	if admin == "" {
		admin = env.Sender
	}
	triggerer := params.Triggerer
	if triggerer == "" {
		triggerer = env.Sender
	}

	cfg := &entities.PoolConfig{
		Admin:                    admin,
		Triggerer:                triggerer,
		TriggererSharePercentage: params.TriggererSharePercentage,
		Token:                    params.Token,
		StakingContract:          params.StakingContract,
		StakingViewingKey:        params.StakingViewingKey,
		OwnAddress:               params.OwnAddress,
		Lifecycle:                entities.LifecycleRunning,
	}
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save pool config: %w", err)
	}
	if err := s.poolRepo.Save(ctx, &entities.SupplyPool{}); err != nil {
		return nil, fmt.Errorf("failed to save supply pool: %w", err)
	}

	window := entities.NewLotteryWindow(entities.DeriveSeed(params.PrngSeed), env.BlockTime, duration)
	if err := s.windowRepo.Save(ctx, window); err != nil {
		return nil, fmt.Errorf("failed to save lottery window: %w", err)
	}

	if err := s.yieldSource.SetViewingKey(ctx, cfg.StakingContract, cfg.StakingViewingKey); err != nil {
		return nil, fmt.Errorf("failed to queue viewing key registration: %w", err)
	}
	if err := s.eventPublisher.Publish(events.PoolInitializedEvent{
		Admin:     admin,
		Triggerer: triggerer,
		StartTime: window.StartTime,
		EndTime:   window.EndTime,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish init event: %w", err)
	}

	log.WithFields(log.Fields{
		"admin":     admin,
		"triggerer": triggerer,
		"duration":  duration,
		"endTime":   window.EndTime,
	}).Info("Pool initialized")

	return window, nil
}
