package repository

import (
	"context"
	"fmt"

	"prizepool/database"
	"prizepool/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork binds every repository to one serializable transaction
type unitOfWork struct {
	db          *database.DB
	tx          pgx.Tx
	ctx         context.Context
	configRepo  interfaces.PoolConfigRepository
	poolRepo    interfaces.SupplyPoolRepository
	windowRepo  interfaces.LotteryWindowRepository
	slotRepo    interfaces.StakeSlotRepository
	accountRepo interfaces.UserAccountRepository
	winRepo     interfaces.WinRecordRepository
	keyRepo     interfaces.ViewingKeyRepository
}

// UnitOfWorkFactory creates transaction-scoped repository sets
type UnitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// Create returns an unstarted unit of work
func (f *UnitOfWorkFactory) Create() interfaces.TransactionalRepositories {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.configRepo = newPoolConfigRepositoryWithTx(tx)
	u.poolRepo = newSupplyPoolRepositoryWithTx(tx)
	u.windowRepo = newLotteryWindowRepositoryWithTx(tx)
	u.slotRepo = newStakeSlotRepositoryWithTx(tx)
	u.accountRepo = newUserAccountRepositoryWithTx(tx)
	u.winRepo = newWinRecordRepositoryWithTx(tx)
	u.keyRepo = newViewingKeyRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	u.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

func (u *unitOfWork) mustBegin() {
	if u.configRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
}

// PoolConfigRepository returns the pool config repository for this unit of work
func (u *unitOfWork) PoolConfigRepository() interfaces.PoolConfigRepository {
	u.mustBegin()
	return u.configRepo
}

// SupplyPoolRepository returns the supply pool repository for this unit of work
func (u *unitOfWork) SupplyPoolRepository() interfaces.SupplyPoolRepository {
	u.mustBegin()
	return u.poolRepo
}

// LotteryWindowRepository returns the lottery window repository for this unit of work
func (u *unitOfWork) LotteryWindowRepository() interfaces.LotteryWindowRepository {
	u.mustBegin()
	return u.windowRepo
}

// StakeSlotRepository returns the stake slot repository for this unit of work
func (u *unitOfWork) StakeSlotRepository() interfaces.StakeSlotRepository {
	u.mustBegin()
	return u.slotRepo
}

// UserAccountRepository returns the user account repository for this unit of work
func (u *unitOfWork) UserAccountRepository() interfaces.UserAccountRepository {
	u.mustBegin()
	return u.accountRepo
}

// WinRecordRepository returns the win record repository for this unit of work
func (u *unitOfWork) WinRecordRepository() interfaces.WinRecordRepository {
	u.mustBegin()
	return u.winRepo
}

// ViewingKeyRepository returns the viewing key repository for this unit of work
func (u *unitOfWork) ViewingKeyRepository() interfaces.ViewingKeyRepository {
	u.mustBegin()
	return u.keyRepo
}
