package services

import (
	"context"
	"fmt"

	"prizepool/domain/draw"
	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/domain/ledger"
	"prizepool/domain/utils"
	"prizepool/events"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// drawService implements the lottery draw
type drawService struct {
	configRepo     interfaces.PoolConfigRepository
	poolRepo       interfaces.SupplyPoolRepository
	windowRepo     interfaces.LotteryWindowRepository
	accountRepo    interfaces.UserAccountRepository
	winRepo        interfaces.WinRecordRepository
	arena          *ledger.Arena
	yieldSource    interfaces.YieldSource
	token          interfaces.TokenTransferer
	eventPublisher interfaces.EventPublisher
}

// NewDrawService creates a new draw service
func NewDrawService(
	configRepo interfaces.PoolConfigRepository,
	poolRepo interfaces.SupplyPoolRepository,
	windowRepo interfaces.LotteryWindowRepository,
	accountRepo interfaces.UserAccountRepository,
	winRepo interfaces.WinRecordRepository,
	slotRepo interfaces.StakeSlotRepository,
	yieldSource interfaces.YieldSource,
	token interfaces.TokenTransferer,
	eventPublisher interfaces.EventPublisher,
) interfaces.DrawService {
	return &drawService{
		configRepo:     configRepo,
		poolRepo:       poolRepo,
		windowRepo:     windowRepo,
		accountRepo:    accountRepo,
		winRepo:        winRepo,
		arena:          ledger.NewArena(slotRepo),
		yieldSource:    yieldSource,
		token:          token,
		eventPublisher: eventPublisher,
	}
}

// ClaimRewards runs the draw for the closing window and opens the next one.
// Empty or all-zero-weight ledgers end the window without moving funds.
func (s *drawService) ClaimRewards(ctx context.Context, env entities.CallEnv) (*entities.DrawOutcome, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return nil, err
	}
	if err := cfg.Lifecycle.Check(entities.OpClaimRewards); err != nil {
		return nil, err
	}
	if err := cfg.RequireTriggerer(env.Sender); err != nil {
		return nil, err
	}

	window, err := loadWindow(ctx, s.windowRepo)
	if err != nil {
		return nil, err
	}
	if err := window.ValidateDraw(env.BlockTime); err != nil {
		return nil, err
	}

	closing := *window
	window.Absorb(env.BlockHeight, env.BlockTime)
	window.Reset(env.BlockTime)
	if err := s.windowRepo.Save(ctx, window); err != nil {
		return nil, fmt.Errorf("failed to save lottery window: %w", err)
	}

	var candidates []draw.Candidate
	if err := s.arena.ForEach(ctx, func(ref entities.SlotRef, entry entities.StakeEntry) error {
		candidates = append(candidates, draw.NewCandidate(ref, entry, closing))
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to read stake ledger: %w", err)
	}

	winner, status, err := draw.Pick(candidates, draw.DeriveKey(window.Seed, window.Entropy))
	if err != nil {
		return nil, fmt.Errorf("failed to pick winner: %w", err)
	}

	outcome := &entities.DrawOutcome{
		Status:     status,
		Candidates: len(candidates),
		NextWindow: *window,
	}
	if winner == nil {
		log.WithFields(log.Fields{
			"status":     status,
			"candidates": len(candidates),
			"nextEnd":    window.EndTime,
		}).Warn("Draw finished without a winner")
		return outcome, s.publishOutcome(outcome, env)
	}

	if err := s.payWinner(ctx, env, cfg, winner.Entry.Owner, outcome); err != nil {
		return nil, err
	}
	if err := s.publishOutcome(outcome, env); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"winner":     outcome.Winner,
		"prize":      utils.FormatShortNotation(outcome.Prize),
		"fee":        utils.FormatShortNotation(outcome.Fee),
		"payout":     utils.FormatShortNotation(outcome.Payout),
		"candidates": outcome.Candidates,
	}).Info("Lottery draw completed")

	return outcome, nil
}

func (s *drawService) payWinner(ctx context.Context, env entities.CallEnv, cfg *entities.PoolConfig, winnerAddress string, outcome *entities.DrawOutcome) error {
	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return err
	}
	observed, err := observePending(ctx, s.yieldSource, cfg, env.BlockHeight)
	if err != nil {
		return err
	}
	settlement, err := pool.SettleDraw(observed, cfg.TriggererSharePercentage)
	if err != nil {
		return err
	}
	if err := s.poolRepo.Save(ctx, pool); err != nil {
		return fmt.Errorf("failed to save supply pool: %w", err)
	}
	// The redeem interaction also pulls the observed reward into the pool.
	if err := s.yieldSource.Redeem(ctx, cfg.StakingContract, settlement.Redeem); err != nil {
		return fmt.Errorf("failed to queue staking redeem: %w", err)
	}

	account, err := loadAccount(ctx, s.accountRepo, winnerAddress)
	if err != nil {
		return err
	}
	if err := account.Credit(settlement.Payout); err != nil {
		return err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save winner account: %w", err)
	}

	if err := s.winRepo.Create(ctx, &entities.WinRecord{
		Winner: winnerAddress,
		Amount: settlement.Payout,
		WonAt:  env.BlockTime,
	}); err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}

	outcome.Winner = winnerAddress
	outcome.Prize = settlement.Prize
	outcome.Fee = settlement.Fee
	outcome.Payout = settlement.Payout
	return nil
}

func (s *drawService) publishOutcome(outcome *entities.DrawOutcome, env entities.CallEnv) error {
	if err := s.eventPublisher.Publish(events.DrawCompletedEvent{
		Status:      string(outcome.Status),
		Winner:      outcome.Winner,
		Prize:       outcome.Prize.Dec(),
		Fee:         outcome.Fee.Dec(),
		Payout:      outcome.Payout.Dec(),
		Candidates:  outcome.Candidates,
		BlockTime:   env.BlockTime,
		NextEndTime: outcome.NextWindow.EndTime,
	}); err != nil {
		return fmt.Errorf("failed to publish draw event: %w", err)
	}
	return nil
}

// WithdrawTriggerFee pays the accrued trigger fee to the caller, who must be the admin or the triggerer.
func (s *drawService) WithdrawTriggerFee(ctx context.Context, env entities.CallEnv) (uint256.Int, error) {
	cfg, err := loadConfig(ctx, s.configRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	if err := cfg.Lifecycle.Check(entities.OpTriggerFeeWithdraw); err != nil {
		return uint256.Int{}, err
	}
	if !cfg.CanWithdrawTriggerFee(env.Sender) {
		return uint256.Int{}, entities.ErrNotFeeRecipient
	}

	pool, err := loadSupplyPool(ctx, s.poolRepo)
	if err != nil {
		return uint256.Int{}, err
	}
	fee, err := pool.TakeTriggerFee()
	if err != nil {
		return uint256.Int{}, err
	}
	if err := s.poolRepo.Save(ctx, pool); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to save supply pool: %w", err)
	}
	if err := s.token.Transfer(ctx, cfg.Token, env.Sender, fee); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to queue fee transfer: %w", err)
	}
	if err := s.eventPublisher.Publish(events.TriggerFeeWithdrawnEvent{
		Recipient: env.Sender,
		Amount:    fee.Dec(),
	}); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to publish fee event: %w", err)
	}

	log.WithFields(log.Fields{
		"recipient": env.Sender,
		"fee":       utils.FormatShortNotation(fee),
	}).Info("Trigger fee withdrawn")

	return fee, nil
}
