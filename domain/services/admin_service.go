package services

import (
	"context"
	"fmt"
	"strconv"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/events"

	log "github.com/sirupsen/logrus"
)

// adminService implements admin-only configuration setters
type adminService struct {
	configRepo     interfaces.PoolConfigRepository
	windowRepo     interfaces.LotteryWindowRepository
	eventPublisher interfaces.EventPublisher
}

// NewAdminService creates a new admin service
func NewAdminService(
	configRepo interfaces.PoolConfigRepository,
	windowRepo interfaces.LotteryWindowRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.AdminService {
	return &adminService{
		configRepo:     configRepo,
		windowRepo:     windowRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *adminService) update(ctx context.Context, env entities.CallEnv, op entities.Operation, field, value string, apply func(*entities.PoolConfig) error) error {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return err
	}
	if err := cfg.RequireAdmin(env.Sender); err != nil {
		return err
	}
	if err := cfg.Lifecycle.Check(op); err != nil {
		return err
	}
	if err := apply(cfg); err != nil {
		return err
	}
	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save pool config: %w", err)
	}
	if err := s.eventPublisher.Publish(events.ConfigChangedEvent{Field: field, Value: value}); err != nil {
		return fmt.Errorf("failed to publish config event: %w", err)
	}
	log.WithFields(log.Fields{"field": field, "value": value}).Info("Pool config changed")
	return nil
}

// ChangeAdmin hands admin rights to another address
func (s *adminService) ChangeAdmin(ctx context.Context, env entities.CallEnv, admin string) error {
	if admin == "" {
		return entities.ErrInvalidAddress
	}
	return s.update(ctx, env, entities.OpChangeAdmin, "admin", admin, func(cfg *entities.PoolConfig) error {
		cfg.Admin = admin
		return nil
	})
}

// ChangeTriggerer sets the only address allowed to run draws
func (s *adminService) ChangeTriggerer(ctx context.Context, env entities.CallEnv, triggerer string) error {
	if triggerer == "" {
		return entities.ErrInvalidAddress
	}
	return s.update(ctx, env, entities.OpChangeTriggerer, "triggerer", triggerer, func(cfg *entities.PoolConfig) error {
		cfg.Triggerer = triggerer
		return nil
	})
}

// ChangeTriggererShare sets the draw fee percentage
func (s *adminService) ChangeTriggererShare(ctx context.Context, env entities.CallEnv, percentage uint64) error {
	if err := entities.ValidateTriggererShare(percentage); err != nil {
		return err
	}
	value := strconv.FormatUint(percentage, 10)
	return s.update(ctx, env, entities.OpChangeTriggererShare, "triggerer_share_percentage", value, func(cfg *entities.PoolConfig) error {
		cfg.TriggererSharePercentage = percentage
		return nil
	})
}

// ChangeLotteryDuration sets the length of windows opened from now on.
// The current window keeps its end time.
func (s *adminService) ChangeLotteryDuration(ctx context.Context, env entities.CallEnv, duration uint64) error {
	if err := entities.ValidateDuration(duration); err != nil {
		return err
	}
	value := strconv.FormatUint(duration, 10)
	return s.update(ctx, env, entities.OpChangeLotteryDuration, "lottery_duration", value, func(*entities.PoolConfig) error {
		window, err := loadWindow(ctx, s.windowRepo)
		if err != nil {
			return err
		}
		window.Duration = duration
		if err := s.windowRepo.Save(ctx, window); err != nil {
			return fmt.Errorf("failed to save lottery window: %w", err)
		}
		return nil
	})
}
