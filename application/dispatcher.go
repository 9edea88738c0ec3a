package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/domain/services"
	"prizepool/domain/utils"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// MessageRecorder receives one observation per handled call
type MessageRecorder interface {
	RecordMessageHandled(messageType, outcome string, duration time.Duration)
	RecordQuery(queryType, outcome string)
}

// Dispatcher runs every call in its own unit of work. A failing call rolls
// back its state changes and drops its outbound messages.
type Dispatcher struct {
	uowFactory      interfaces.UnitOfWorkFactory
	blocks          BlockSource
	contractAddress string
	recorder        MessageRecorder
}

// NewDispatcher creates a dispatcher. contractAddress is the pool's own account,
// used when init does not name one. recorder may be nil.
func NewDispatcher(uowFactory interfaces.UnitOfWorkFactory, blocks BlockSource, contractAddress string, recorder MessageRecorder) *Dispatcher {
	return &Dispatcher{
		uowFactory:      uowFactory,
		blocks:          blocks,
		contractAddress: contractAddress,
		recorder:        recorder,
	}
}

// Execute handles one state-changing message
func (d *Dispatcher) Execute(ctx context.Context, req ExecuteRequest) (answer *HandleAnswer, err error) {
	start := time.Now()
	tag, err := req.Msg.Tag()
	if err != nil {
		d.recordMessage("unknown", err, start)
		return nil, err
	}
	defer func() { d.recordMessage(tag, err, start) }()

	env := d.callEnv(req)
	if err := env.Validate(); err != nil {
		return nil, err
	}

	uow := d.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	answer, err = d.handle(ctx, uow, env, tag, &req.Msg)
	if err != nil {
		log.WithFields(log.Fields{
			"message": tag,
			"sender":  env.Sender,
			"kind":    entities.KindOf(err),
			"error":   err,
		}).Info("Message rejected")
		return nil, err
	}

	if tag != "init" && tag != "claim_rewards" {
		if err := absorbEntropy(ctx, uow.LotteryWindowRepository(), env); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	answer.Type = tag
	if answer.Status == "" {
		answer.Status = StatusSuccess
	}
	return answer, nil
}

func (d *Dispatcher) callEnv(req ExecuteRequest) entities.CallEnv {
	block := d.blocks.Current()
	env := entities.CallEnv{Sender: req.Sender, BlockHeight: block.Height, BlockTime: block.Time}
	if req.BlockHeight != nil {
		env.BlockHeight = *req.BlockHeight
	}
	if req.BlockTime != nil {
		env.BlockTime = *req.BlockTime
	}
	return env
}

// absorbEntropy folds the call's block into the window so later draws cannot be replayed
func absorbEntropy(ctx context.Context, repo interfaces.LotteryWindowRepository, env entities.CallEnv) error {
	window, err := repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load lottery window: %w", err)
	}
	if window == nil {
		return nil
	}
	window.Absorb(env.BlockHeight, env.BlockTime)
	if err := repo.Save(ctx, window); err != nil {
		return fmt.Errorf("failed to save lottery window: %w", err)
	}
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, uow interfaces.UnitOfWork, env entities.CallEnv, tag string, msg *HandleMsg) (*HandleAnswer, error) {
	switch tag {
	case "init":
		return d.handleInit(ctx, uow, env, msg.Init)
	case "receive", "trigger_withdraw", "withdraw", "redelegate":
		return handleStaking(ctx, stakingService(uow), env, tag, msg)
	case "claim_rewards", "triggering_cost_withdraw":
		return handleDraw(ctx, drawService(uow), env, tag)
	case "change_admin", "change_triggerer", "change_triggerer_share", "change_lottery_duration":
		return handleAdmin(ctx, services.NewAdminService(uow.PoolConfigRepository(), uow.LotteryWindowRepository(), uow.EventBus()), env, tag, msg)
	case "change_staking_contract", "stop_contract", "allow_withdraw_when_stopped", "resume_contract",
		"emergency_redeem_from_staking", "redelegate_to_contract":
		return handleLifecycle(ctx, services.NewLifecycleService(uow.PoolConfigRepository(), uow.SupplyPoolRepository(), uow.YieldSource(), uow.EventBus()), env, tag, msg)
	case "create_viewing_key", "set_viewing_key":
		return handleViewingKey(ctx, viewingKeyService(uow), env, tag, msg)
	}
	return nil, fmt.Errorf("%w: unhandled action %s", entities.ErrInvalidMessage, tag)
}

func (d *Dispatcher) handleInit(ctx context.Context, uow interfaces.UnitOfWork, env entities.CallEnv, msg *InitMsg) (*HandleAnswer, error) {
	seed, err := base64.StdEncoding.DecodeString(msg.PrngSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: prng_seed is not base64: %v", entities.ErrInvalidMessage, err)
	}

	params := interfaces.InitParams{
		Token:                    msg.Token.contract(),
		StakingContract:          msg.StakingContract.contract(),
		StakingViewingKey:        msg.ViewingKey,
		OwnAddress:               msg.OwnAddress,
		PrngSeed:                 seed,
		TriggererSharePercentage: msg.TriggererSharePercentage,
	}
	if msg.Admin != nil {
		params.Admin = *msg.Admin
	}
	if msg.Triggerer != nil {
		params.Triggerer = *msg.Triggerer
	}
	if msg.LotteryDuration != nil {
		params.LotteryDuration = *msg.LotteryDuration
	}
	if params.OwnAddress == "" {
		params.OwnAddress = d.contractAddress
	}

	bootstrap := services.NewBootstrapService(
		uow.PoolConfigRepository(),
		uow.SupplyPoolRepository(),
		uow.LotteryWindowRepository(),
		uow.YieldSource(),
		uow.EventBus(),
	)
	window, err := bootstrap.Initialize(ctx, env, params)
	if err != nil {
		return nil, err
	}
	return &HandleAnswer{Window: windowAnswer(window)}, nil
}

func handleStaking(ctx context.Context, svc interfaces.StakingService, env entities.CallEnv, tag string, msg *HandleMsg) (*HandleAnswer, error) {
	if tag == "receive" {
		if msg.Receive.Msg.Deposit == nil {
			return nil, fmt.Errorf("%w: receive carries no deposit", entities.ErrInvalidMessage)
		}
		amount, err := parseAmount(msg.Receive.Amount)
		if err != nil {
			return nil, err
		}
		if _, err := svc.Deposit(ctx, env, msg.Receive.From, amount); err != nil {
			return nil, err
		}
		return amountAnswer(amount), nil
	}

	var body *AmountMsg
	var op func(context.Context, entities.CallEnv, *uint256.Int) (uint256.Int, error)
	switch tag {
	case "trigger_withdraw":
		body, op = msg.TriggerWithdraw, svc.TriggerWithdraw
	case "withdraw":
		body, op = msg.Withdraw, svc.Withdraw
	default:
		body, op = msg.Redelegate, svc.Redelegate
	}

	amount, err := utils.ParseOptionalAmount(body.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidMessage, err)
	}
	moved, err := op(ctx, env, amount)
	if err != nil {
		return nil, err
	}
	return amountAnswer(moved), nil
}

func handleDraw(ctx context.Context, svc interfaces.DrawService, env entities.CallEnv, tag string) (*HandleAnswer, error) {
	if tag == "triggering_cost_withdraw" {
		fee, err := svc.WithdrawTriggerFee(ctx, env)
		if err != nil {
			return nil, err
		}
		return amountAnswer(fee), nil
	}

	outcome, err := svc.ClaimRewards(ctx, env)
	if err != nil {
		return nil, err
	}
	answer := &HandleAnswer{
		Status: StatusSuccess,
		Draw: &DrawAnswer{
			Outcome:    string(outcome.Status),
			Winner:     outcome.Winner,
			Prize:      outcome.Prize.Dec(),
			Fee:        outcome.Fee.Dec(),
			Payout:     outcome.Payout.Dec(),
			Candidates: outcome.Candidates,
		},
		Window: windowAnswer(&outcome.NextWindow),
	}
	if !outcome.HasWinner() {
		answer.Status = StatusFailure
	}
	return answer, nil
}

func handleAdmin(ctx context.Context, svc interfaces.AdminService, env entities.CallEnv, tag string, msg *HandleMsg) (*HandleAnswer, error) {
	var err error
	switch tag {
	case "change_admin":
		err = svc.ChangeAdmin(ctx, env, msg.ChangeAdmin.Address)
	case "change_triggerer":
		err = svc.ChangeTriggerer(ctx, env, msg.ChangeTriggerer.Address)
	case "change_triggerer_share":
		err = svc.ChangeTriggererShare(ctx, env, msg.ChangeTriggererShare.Percentage)
	default:
		err = svc.ChangeLotteryDuration(ctx, env, msg.ChangeLotteryDuration.Duration)
	}
	if err != nil {
		return nil, err
	}
	return &HandleAnswer{}, nil
}

func handleLifecycle(ctx context.Context, svc interfaces.LifecycleService, env entities.CallEnv, tag string, msg *HandleMsg) (*HandleAnswer, error) {
	switch tag {
	case "emergency_redeem_from_staking":
		amount, err := svc.EmergencyRedeem(ctx, env)
		if err != nil {
			return nil, err
		}
		return amountAnswer(amount), nil
	case "redelegate_to_contract":
		amount, err := svc.RedelegateToContract(ctx, env)
		if err != nil {
			return nil, err
		}
		return amountAnswer(amount), nil
	}

	var err error
	switch tag {
	case "change_staking_contract":
		err = svc.ChangeStakingContract(ctx, env, msg.ChangeStakingContract.contract())
	case "stop_contract":
		err = svc.Stop(ctx, env)
	case "allow_withdraw_when_stopped":
		err = svc.AllowWithdrawWhenStopped(ctx, env)
	default:
		err = svc.Resume(ctx, env)
	}
	if err != nil {
		return nil, err
	}
	return &HandleAnswer{}, nil
}

func handleViewingKey(ctx context.Context, svc interfaces.ViewingKeyService, env entities.CallEnv, tag string, msg *HandleMsg) (*HandleAnswer, error) {
	if tag == "set_viewing_key" {
		if err := svc.SetViewingKey(ctx, env, msg.SetViewingKey.Key); err != nil {
			return nil, err
		}
		return &HandleAnswer{}, nil
	}

	key, err := svc.CreateViewingKey(ctx, env, msg.CreateViewingKey.Entropy)
	if err != nil {
		return nil, err
	}
	return &HandleAnswer{Key: &key}, nil
}

func stakingService(uow interfaces.UnitOfWork) interfaces.StakingService {
	return services.NewStakingService(
		uow.PoolConfigRepository(),
		uow.SupplyPoolRepository(),
		uow.UserAccountRepository(),
		uow.StakeSlotRepository(),
		uow.YieldSource(),
		uow.TokenTransferer(),
		uow.EventBus(),
	)
}

func drawService(uow interfaces.UnitOfWork) interfaces.DrawService {
	return services.NewDrawService(
		uow.PoolConfigRepository(),
		uow.SupplyPoolRepository(),
		uow.LotteryWindowRepository(),
		uow.UserAccountRepository(),
		uow.WinRecordRepository(),
		uow.StakeSlotRepository(),
		uow.YieldSource(),
		uow.TokenTransferer(),
		uow.EventBus(),
	)
}

func viewingKeyService(uow interfaces.UnitOfWork) interfaces.ViewingKeyService {
	return services.NewViewingKeyService(uow.ViewingKeyRepository(), uow.LotteryWindowRepository(), uow.PoolConfigRepository())
}

func parseAmount(s string) (uint256.Int, error) {
	amount, err := utils.ParseAmount(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %v", entities.ErrInvalidMessage, err)
	}
	return amount, nil
}

func amountAnswer(amount uint256.Int) *HandleAnswer {
	dec := amount.Dec()
	return &HandleAnswer{Amount: &dec}
}

func windowAnswer(w *entities.LotteryWindow) *WindowAnswer {
	return &WindowAnswer{StartTime: w.StartTime, EndTime: w.EndTime, Duration: w.Duration}
}

func (d *Dispatcher) recordMessage(tag string, err error, start time.Time) {
	if d.recorder == nil {
		return
	}
	d.recorder.RecordMessageHandled(tag, outcomeOf(err), time.Since(start))
}

// outcomeOf maps an error to a metrics outcome label
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case entities.KindOf(err) == entities.KindInternal:
		return "error"
	default:
		return "rejected"
	}
}
