package interfaces

import (
	"context"

	"prizepool/domain/entities"
	"prizepool/domain/ledger"
	"prizepool/events"
)

// PoolConfigRepository persists the singleton pool configuration
type PoolConfigRepository interface {
	// Get returns nil when the pool has not been initialized
	Get(ctx context.Context) (*entities.PoolConfig, error)
	Save(ctx context.Context, cfg *entities.PoolConfig) error
}

// SupplyPoolRepository persists the pool-wide accounting buckets
type SupplyPoolRepository interface {
	Get(ctx context.Context) (*entities.SupplyPool, error)
	Save(ctx context.Context, pool *entities.SupplyPool) error
}

// LotteryWindowRepository persists the draw window and randomness state
type LotteryWindowRepository interface {
	Get(ctx context.Context) (*entities.LotteryWindow, error)
	Save(ctx context.Context, window *entities.LotteryWindow) error
}

// StakeSlotRepository persists stake ledger slots
type StakeSlotRepository interface {
	ledger.SlotStore
}

// UserAccountRepository persists participant accounts
type UserAccountRepository interface {
	// GetByAddress returns nil when the address has never interacted with the pool
	GetByAddress(ctx context.Context, address string) (*entities.UserAccount, error)
	Save(ctx context.Context, account *entities.UserAccount) error
}

// WinRecordRepository persists prize history
type WinRecordRepository interface {
	Create(ctx context.Context, record *entities.WinRecord) error
	// GetRecent returns the latest records, most recent first
	GetRecent(ctx context.Context, limit int) ([]*entities.WinRecord, error)
	// GetAll returns every record in chronological order
	GetAll(ctx context.Context) ([]*entities.WinRecord, error)
	GetRecentByWinner(ctx context.Context, winner string, limit int) ([]*entities.WinRecord, error)
	GetAllByWinner(ctx context.Context, winner string) ([]*entities.WinRecord, error)
}

// ViewingKeyRepository persists hashed viewing keys
type ViewingKeyRepository interface {
	// GetHash returns nil when no key was set for address
	GetHash(ctx context.Context, address string) ([]byte, error)
	SetHash(ctx context.Context, address string, hash []byte) error
}

// EventPublisher queues domain events for delivery after commit
type EventPublisher interface {
	Publish(event events.Event) error
}
