package application

import (
	"context"
	"fmt"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/domain/services"

	"github.com/holiman/uint256"
)

// Query answers one read-only call. The unit of work is always rolled back.
func (d *Dispatcher) Query(ctx context.Context, req QueryRequest) (answer *QueryAnswer, err error) {
	tag, err := req.Msg.Tag()
	if err != nil {
		d.recordQuery("unknown", err)
		return nil, err
	}
	defer func() { d.recordQuery(tag, err) }()

	uow := d.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	svc := services.NewQueryService(
		uow.PoolConfigRepository(),
		uow.SupplyPoolRepository(),
		uow.LotteryWindowRepository(),
		uow.UserAccountRepository(),
		uow.WinRecordRepository(),
		uow.YieldSource(),
	)

	if auth := authQuery(&req.Msg); auth != nil {
		keys := viewingKeyService(uow)
		ok, err := keys.Authenticate(ctx, auth.Address, auth.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &QueryAnswer{
				Type:            "viewing_key_error",
				ViewingKeyError: &ViewingKeyErrorAnswer{Msg: wrongViewingKeyMsg},
			}, nil
		}
	}

	answer, err = d.query(ctx, svc, tag, &req.Msg)
	if err != nil {
		return nil, err
	}
	answer.Type = tag
	return answer, nil
}

func authQuery(msg *QueryMsg) *AuthQuery {
	for _, q := range []*AuthQuery{msg.Balance, msg.AvailableForWithdraw, msg.UserPastRecords, msg.UserAllPastRecords} {
		if q != nil {
			return q
		}
	}
	return nil
}

func (d *Dispatcher) query(ctx context.Context, svc interfaces.QueryService, tag string, msg *QueryMsg) (*QueryAnswer, error) {
	switch tag {
	case "lottery_info":
		info, err := svc.LotteryInfo(ctx)
		if err != nil {
			return nil, err
		}
		return &QueryAnswer{LotteryInfo: &LotteryInfoAnswer{
			StartTime:             info.StartTime,
			EndTime:               info.EndTime,
			Duration:              info.Duration,
			IsStopped:             info.IsStopped,
			IsStoppedWithWithdraw: info.IsStoppedWithWithdraw,
		}}, nil
	case "total_rewards":
		height := msg.TotalRewards.Height
		if height == 0 {
			height = d.blocks.Current().Height
		}
		return amountQuery(svc.TotalRewards(ctx, height))
	case "total_deposits":
		return amountQuery(svc.TotalDeposits(ctx))
	case "contract_status":
		status, err := svc.ContractStatus(ctx)
		if err != nil {
			return nil, err
		}
		return &QueryAnswer{ContractStatus: &ContractStatusAnswer{IsStopped: status.IsStopped}}, nil
	case "reward_token":
		token, err := svc.RewardToken(ctx)
		if err != nil {
			return nil, err
		}
		return &QueryAnswer{RewardToken: &ContractMsg{Address: token.Address, CodeHash: token.CodeHash}}, nil
	case "balance":
		return amountQuery(svc.Balance(ctx, msg.Balance.Address))
	case "available_for_withdraw":
		return amountQuery(svc.AvailableForWithdraw(ctx, msg.AvailableForWithdraw.Address))
	case "user_past_records":
		return recordsQuery(svc.UserPastRecords(ctx, msg.UserPastRecords.Address))
	case "user_all_past_records":
		return recordsQuery(svc.UserAllPastRecords(ctx, msg.UserAllPastRecords.Address))
	case "past_records":
		return recordsQuery(svc.PastRecords(ctx))
	case "past_all_records":
		return recordsQuery(svc.PastAllRecords(ctx))
	}
	return nil, fmt.Errorf("%w: unhandled query %s", entities.ErrInvalidMessage, tag)
}

func amountQuery(amount uint256.Int, err error) (*QueryAnswer, error) {
	if err != nil {
		return nil, err
	}
	dec := amount.Dec()
	return &QueryAnswer{Amount: &dec}, nil
}

func recordsQuery(records []*entities.WinRecord, err error) (*QueryAnswer, error) {
	if err != nil {
		return nil, err
	}
	out := make([]RecordAnswer, 0, len(records))
	for _, r := range records {
		out = append(out, RecordAnswer{Winner: r.Winner, Amount: r.Amount.Dec(), Timestamp: r.WonAt})
	}
	return &QueryAnswer{Records: &RecordsAnswer{Records: out}}, nil
}

func (d *Dispatcher) recordQuery(tag string, err error) {
	if d.recorder == nil {
		return
	}
	d.recorder.RecordQuery(tag, outcomeOf(err))
}
