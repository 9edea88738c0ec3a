package interfaces

import (
	"context"

	"prizepool/domain/entities"

	"github.com/holiman/uint256"
)

// YieldSource is the external staking contract. Deposit, Redeem and
// SetViewingKey are dispatched after the calling transaction commits and
// settle asynchronously; QueryPendingReward is a synchronous read.
type YieldSource interface {
	Deposit(ctx context.Context, target entities.Contract, amount uint256.Int) error
	Redeem(ctx context.Context, target entities.Contract, amount uint256.Int) error
	SetViewingKey(ctx context.Context, target entities.Contract, key string) error
	QueryPendingReward(ctx context.Context, target entities.Contract, observer, key string, height uint64) (uint256.Int, error)
}

// TokenTransferer sends pool-held tokens to a recipient after commit.
type TokenTransferer interface {
	Transfer(ctx context.Context, token entities.Contract, recipient string, amount uint256.Int) error
}
