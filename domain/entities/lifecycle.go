package entities

import "fmt"

// Lifecycle is the pool's operational state.
type Lifecycle string

const (
	LifecycleRunning              Lifecycle = "running"
	LifecycleStopped              Lifecycle = "stopped"
	LifecycleStoppedAllowWithdraw Lifecycle = "stopped_allow_withdraw"
)

// Operation names a gated entry point.
type Operation string

const (
	OpDeposit                  Operation = "deposit"
	OpTriggerWithdraw          Operation = "trigger_withdraw"
	OpWithdraw                 Operation = "withdraw"
	OpRedelegate               Operation = "redelegate"
	OpClaimRewards             Operation = "claim_rewards"
	OpTriggerFeeWithdraw       Operation = "triggering_cost_withdraw"
	OpChangeAdmin              Operation = "change_admin"
	OpChangeTriggerer          Operation = "change_triggerer"
	OpChangeTriggererShare     Operation = "change_triggerer_share"
	OpChangeLotteryDuration    Operation = "change_lottery_duration"
	OpChangeStakingContract    Operation = "change_staking_contract"
	OpStopContract             Operation = "stop_contract"
	OpAllowWithdrawWhenStopped Operation = "allow_withdraw_when_stopped"
	OpResumeContract           Operation = "resume_contract"
	OpEmergencyRedeem          Operation = "emergency_redeem_from_staking"
	OpRedelegateToContract     Operation = "redelegate_to_contract"
	OpCreateViewingKey         Operation = "create_viewing_key"
	OpSetViewingKey            Operation = "set_viewing_key"
)

// IsStopped is true for both stopped sub-states.
func (l Lifecycle) IsStopped() bool {
	return l == LifecycleStopped || l == LifecycleStoppedAllowWithdraw
}

// AllowsPrincipalWithdraw is true only when stopped with withdrawals allowed.
func (l Lifecycle) AllowsPrincipalWithdraw() bool {
	return l == LifecycleStoppedAllowWithdraw
}

// Valid reports whether l is a known state.
func (l Lifecycle) Valid() bool {
	switch l {
	case LifecycleRunning, LifecycleStopped, LifecycleStoppedAllowWithdraw:
		return true
	}
	return false
}

// Check returns nil when op may run in state l, otherwise the rejection error.
func (l Lifecycle) Check(op Operation) error {
	switch op {
	case OpDeposit, OpTriggerWithdraw, OpRedelegate, OpClaimRewards,
		OpChangeAdmin, OpChangeTriggerer, OpChangeTriggererShare, OpChangeLotteryDuration:
		if l.IsStopped() {
			return fmt.Errorf("%w: %s is disabled", ErrContractStopped, op)
		}
	case OpStopContract:
		if l.IsStopped() {
			return ErrAlreadyStopped
		}
	case OpAllowWithdrawWhenStopped:
		if !l.IsStopped() {
			return ErrNotStopped
		}
		if l == LifecycleStoppedAllowWithdraw {
			return ErrAlreadyAllowWithdraw
		}
	case OpResumeContract, OpEmergencyRedeem, OpRedelegateToContract:
		if !l.IsStopped() {
			return ErrNotStopped
		}
	}
	return nil
}
