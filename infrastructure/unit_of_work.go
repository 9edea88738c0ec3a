package infrastructure

import (
	"context"

	"prizepool/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// unitOfWork wraps the repository transaction and releases outbound messages on commit
type unitOfWork struct {
	inner                  interfaces.TransactionalRepositories
	transactionalPublisher *NATSTransactionalPublisher
	outbox                 *MessageOutbox
	yieldSource            interfaces.YieldSource
	tokenTransferer        interfaces.TokenTransferer
	ctx                    context.Context
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	u.ctx = ctx
	return u.inner.Begin(ctx)
}

// Commit commits the transaction, then sends staking commands and events.
// Send failures are logged; the state change is already durable.
func (u *unitOfWork) Commit() error {
	if err := u.inner.Commit(); err != nil {
		return err
	}

	ctx := u.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := u.outbox.Flush(ctx); err != nil {
		log.WithError(err).Error("Outbound commands were not fully delivered after commit")
	}
	_ = u.transactionalPublisher.Flush(ctx)
	return nil
}

// Rollback discards pending messages and rolls back the transaction
func (u *unitOfWork) Rollback() error {
	u.outbox.Discard()
	u.transactionalPublisher.Discard()
	return u.inner.Rollback()
}

func (u *unitOfWork) PoolConfigRepository() interfaces.PoolConfigRepository {
	return u.inner.PoolConfigRepository()
}

func (u *unitOfWork) SupplyPoolRepository() interfaces.SupplyPoolRepository {
	return u.inner.SupplyPoolRepository()
}

func (u *unitOfWork) LotteryWindowRepository() interfaces.LotteryWindowRepository {
	return u.inner.LotteryWindowRepository()
}

func (u *unitOfWork) StakeSlotRepository() interfaces.StakeSlotRepository {
	return u.inner.StakeSlotRepository()
}

func (u *unitOfWork) UserAccountRepository() interfaces.UserAccountRepository {
	return u.inner.UserAccountRepository()
}

func (u *unitOfWork) WinRecordRepository() interfaces.WinRecordRepository {
	return u.inner.WinRecordRepository()
}

func (u *unitOfWork) ViewingKeyRepository() interfaces.ViewingKeyRepository {
	return u.inner.ViewingKeyRepository()
}

// EventBus returns the transactional event publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}

// YieldSource returns a yield source whose commands wait for commit
func (u *unitOfWork) YieldSource() interfaces.YieldSource {
	return u.yieldSource
}

// TokenTransferer returns a transferer whose transfers wait for commit
func (u *unitOfWork) TokenTransferer() interfaces.TokenTransferer {
	return u.tokenTransferer
}
