package interfaces

import (
	"context"

	"prizepool/domain/entities"

	"github.com/holiman/uint256"
)

// StakingService moves principal in and out of the pool
type StakingService interface {
	Deposit(ctx context.Context, env entities.CallEnv, from string, amount uint256.Int) (*DepositResult, error)
	TriggerWithdraw(ctx context.Context, env entities.CallEnv, amount *uint256.Int) (uint256.Int, error)
	Withdraw(ctx context.Context, env entities.CallEnv, amount *uint256.Int) (uint256.Int, error)
	Redelegate(ctx context.Context, env entities.CallEnv, amount *uint256.Int) (uint256.Int, error)
}

// DrawService runs the lottery draw and pays the trigger fee
type DrawService interface {
	ClaimRewards(ctx context.Context, env entities.CallEnv) (*entities.DrawOutcome, error)
	WithdrawTriggerFee(ctx context.Context, env entities.CallEnv) (uint256.Int, error)
}

// LifecycleService owns stop/resume and emergency fund recovery
type LifecycleService interface {
	Stop(ctx context.Context, env entities.CallEnv) error
	AllowWithdrawWhenStopped(ctx context.Context, env entities.CallEnv) error
	Resume(ctx context.Context, env entities.CallEnv) error
	EmergencyRedeem(ctx context.Context, env entities.CallEnv) (uint256.Int, error)
	RedelegateToContract(ctx context.Context, env entities.CallEnv) (uint256.Int, error)
	ChangeStakingContract(ctx context.Context, env entities.CallEnv, contract entities.Contract) error
}

// AdminService updates admin-controlled configuration
type AdminService interface {
	ChangeAdmin(ctx context.Context, env entities.CallEnv, admin string) error
	ChangeTriggerer(ctx context.Context, env entities.CallEnv, triggerer string) error
	ChangeTriggererShare(ctx context.Context, env entities.CallEnv, percentage uint64) error
	ChangeLotteryDuration(ctx context.Context, env entities.CallEnv, duration uint64) error
}

// QueryService answers read-only questions about the pool
type QueryService interface {
	LotteryInfo(ctx context.Context) (*LotteryInfo, error)
	TotalRewards(ctx context.Context, height uint64) (uint256.Int, error)
	TotalDeposits(ctx context.Context) (uint256.Int, error)
	ContractStatus(ctx context.Context) (*ContractStatus, error)
	RewardToken(ctx context.Context) (*entities.Contract, error)
	Balance(ctx context.Context, address string) (uint256.Int, error)
	AvailableForWithdraw(ctx context.Context, address string) (uint256.Int, error)
	UserPastRecords(ctx context.Context, address string) ([]*entities.WinRecord, error)
	UserAllPastRecords(ctx context.Context, address string) ([]*entities.WinRecord, error)
	PastRecords(ctx context.Context) ([]*entities.WinRecord, error)
	PastAllRecords(ctx context.Context) ([]*entities.WinRecord, error)
}

// ViewingKeyService issues and checks keys guarding per-user queries
type ViewingKeyService interface {
	CreateViewingKey(ctx context.Context, env entities.CallEnv, entropy string) (string, error)
	SetViewingKey(ctx context.Context, env entities.CallEnv, key string) error
	Authenticate(ctx context.Context, address, key string) (bool, error)
}

// BootstrapService creates the pool
type BootstrapService interface {
	Initialize(ctx context.Context, env entities.CallEnv, params InitParams) (*entities.LotteryWindow, error)
}

// DepositResult describes an accepted deposit
type DepositResult struct {
	Entry     entities.SlotRef
	Forwarded uint256.Int
}

// LotteryInfo describes the current window and lifecycle
type LotteryInfo struct {
	StartTime             uint64
	EndTime               uint64
	Duration              uint64
	IsStopped             bool
	IsStoppedWithWithdraw bool
}

// ContractStatus reports whether the pool is stopped
type ContractStatus struct {
	IsStopped bool
}

// InitParams configure a new pool. Empty Admin and Triggerer default to the caller;
// a zero LotteryDuration defaults to entities.DefaultLotteryDuration.
type InitParams struct {
	Admin                    string
	Triggerer                string
	Token                    entities.Contract
	StakingContract          entities.Contract
	StakingViewingKey        string
	OwnAddress               string
	PrngSeed                 []byte
	TriggererSharePercentage uint64
	LotteryDuration          uint64
}
