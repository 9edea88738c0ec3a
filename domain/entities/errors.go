package entities

import "errors"

// ErrorKind classifies a rejected call for callers that need more than the message.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindStopped      ErrorKind = "contract_stopped"
	KindPrecondition ErrorKind = "precondition"
	KindArithmetic   ErrorKind = "arithmetic"
	KindInvalidInput ErrorKind = "invalid_input"
	KindInternal     ErrorKind = "internal"
)

// Authorization
var (
	ErrNotAdmin        = errors.New("caller is not the admin")
	ErrNotTriggerer    = errors.New("caller is not the triggerer")
	ErrNotFeeRecipient = errors.New("only the admin or the triggerer may withdraw the trigger fee")
)

// Lifecycle
var (
	ErrContractStopped      = errors.New("contract is stopped")
	ErrAlreadyStopped       = errors.New("contract is already stopped")
	ErrNotStopped           = errors.New("contract must be stopped first")
	ErrAlreadyAllowWithdraw = errors.New("withdrawals are already allowed while stopped")
	ErrAlreadyRecovered     = errors.New("funds were already redeemed from the staking contract")
	ErrNothingRecovered     = errors.New("no recovered funds to redelegate")
	ErrRecoveryShortfall    = errors.New("recovered funds do not cover the principal withdrawal, emergency redeem required")
	ErrNotInitialized       = errors.New("pool is not initialized")
	ErrAlreadyInitialized   = errors.New("pool is already initialized")
)

// Preconditions and input validation
var (
	ErrWindowNotDue          = errors.New("lottery end time is in the future")
	ErrWindowNotStarted      = errors.New("lottery start time is in the future")
	ErrNothingStaked         = errors.New("no tokens staked")
	ErrInsufficientStake     = errors.New("withdraw amount exceeds staked amount")
	ErrNothingToWithdraw     = errors.New("no tokens available for withdrawal")
	ErrInsufficientAvailable = errors.New("amount exceeds tokens available for withdrawal")
	ErrNoFeeAccrued          = errors.New("no triggering fee accrued")
	ErrBelowMinimumDeposit   = errors.New("deposit is below the minimum amount")
	ErrUnsupportedToken      = errors.New("token not supported")
	ErrInvalidPercentage     = errors.New("triggerer share must be between 0 and 100")
	ErrInvalidDuration       = errors.New("lottery duration must be positive and at most one hundred years")
	ErrInvalidAddress        = errors.New("address must not be empty")
	ErrInvalidMessage        = errors.New("message must carry exactly one well-formed action")
	ErrNoRewards             = errors.New("no rewards available")
)

// Arithmetic
var (
	ErrUnderflow = errors.New("amount underflow")
	ErrOverflow  = errors.New("amount overflow")
)

// Stake ledger
var (
	ErrSlotNotFound    = errors.New("stake slot not found")
	ErrStaleSlot       = errors.New("stake slot reference is stale")
	ErrLedgerShortfall = errors.New("stake entries do not cover the requested amount")
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrNotAdmin, KindUnauthorized},
	{ErrNotTriggerer, KindUnauthorized},
	{ErrNotFeeRecipient, KindUnauthorized},
	{ErrUnsupportedToken, KindUnauthorized},
	{ErrContractStopped, KindStopped},
	{ErrAlreadyStopped, KindPrecondition},
	{ErrNotStopped, KindPrecondition},
	{ErrAlreadyAllowWithdraw, KindPrecondition},
	{ErrAlreadyRecovered, KindPrecondition},
	{ErrNothingRecovered, KindPrecondition},
	{ErrRecoveryShortfall, KindPrecondition},
	{ErrNotInitialized, KindPrecondition},
	{ErrAlreadyInitialized, KindPrecondition},
	{ErrWindowNotDue, KindPrecondition},
	{ErrWindowNotStarted, KindPrecondition},
	{ErrNothingStaked, KindPrecondition},
	{ErrInsufficientStake, KindPrecondition},
	{ErrNothingToWithdraw, KindPrecondition},
	{ErrInsufficientAvailable, KindPrecondition},
	{ErrNoFeeAccrued, KindPrecondition},
	{ErrNoRewards, KindPrecondition},
	{ErrBelowMinimumDeposit, KindInvalidInput},
	{ErrInvalidPercentage, KindInvalidInput},
	{ErrInvalidDuration, KindInvalidInput},
	{ErrInvalidAddress, KindInvalidInput},
	{ErrInvalidMessage, KindInvalidInput},
	{ErrUnderflow, KindArithmetic},
	{ErrOverflow, KindArithmetic},
	{ErrSlotNotFound, KindInternal},
	{ErrStaleSlot, KindInternal},
	{ErrLedgerShortfall, KindInternal},
}

// KindOf reports the kind of a (possibly wrapped) domain error.
// Errors that do not wrap a domain sentinel are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
