package interfaces

import "context"

// RepositoryScope exposes the repositories bound to one transaction
type RepositoryScope interface {
	PoolConfigRepository() PoolConfigRepository
	SupplyPoolRepository() SupplyPoolRepository
	LotteryWindowRepository() LotteryWindowRepository
	StakeSlotRepository() StakeSlotRepository
	UserAccountRepository() UserAccountRepository
	WinRecordRepository() WinRecordRepository
	ViewingKeyRepository() ViewingKeyRepository
}

// TransactionalRepositories is a database transaction plus its repositories
type TransactionalRepositories interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction. It is safe to call after Commit.
	Rollback() error

	RepositoryScope
}

// UnitOfWork groups one call's state changes and its outbound messages.
// Events, staking commands and token transfers are held until Commit and
// dropped on Rollback.
type UnitOfWork interface {
	TransactionalRepositories

	EventBus() EventPublisher
	YieldSource() YieldSource
	TokenTransferer() TokenTransferer
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
