package application

import (
	"fmt"

	"prizepool/domain/entities"
)

// Empty is the body of messages without parameters
type Empty struct{}

// ExecuteRequest is one state-changing call. Block fields are filled from the
// block source when the host does not supply them.
type ExecuteRequest struct {
	Sender      string    `json:"sender"`
	BlockHeight *uint64   `json:"block_height,omitempty"`
	BlockTime   *uint64   `json:"block_time,omitempty"`
	Msg         HandleMsg `json:"msg"`
}

// QueryRequest is one read-only call
type QueryRequest struct {
	Msg QueryMsg `json:"msg"`
}

// HandleMsg carries exactly one state-changing action
type HandleMsg struct {
	Init                       *InitMsg             `json:"init,omitempty"`
	Receive                    *ReceiveMsg          `json:"receive,omitempty"`
	TriggerWithdraw            *AmountMsg           `json:"trigger_withdraw,omitempty"`
	Withdraw                   *AmountMsg           `json:"withdraw,omitempty"`
	Redelegate                 *AmountMsg           `json:"redelegate,omitempty"`
	ClaimRewards               *Empty               `json:"claim_rewards,omitempty"`
	TriggeringCostWithdraw     *Empty               `json:"triggering_cost_withdraw,omitempty"`
	ChangeAdmin                *AddressMsg          `json:"change_admin,omitempty"`
	ChangeTriggerer            *AddressMsg          `json:"change_triggerer,omitempty"`
	ChangeTriggererShare       *ShareMsg            `json:"change_triggerer_share,omitempty"`
	ChangeLotteryDuration      *DurationMsg         `json:"change_lottery_duration,omitempty"`
	ChangeStakingContract      *ContractMsg         `json:"change_staking_contract,omitempty"`
	StopContract               *Empty               `json:"stop_contract,omitempty"`
	AllowWithdrawWhenStopped   *Empty               `json:"allow_withdraw_when_stopped,omitempty"`
	ResumeContract             *Empty               `json:"resume_contract,omitempty"`
	EmergencyRedeemFromStaking *Empty               `json:"emergency_redeem_from_staking,omitempty"`
	RedelegateToContract       *Empty               `json:"redelegate_to_contract,omitempty"`
	CreateViewingKey           *CreateViewingKeyMsg `json:"create_viewing_key,omitempty"`
	SetViewingKey              *SetViewingKeyMsg    `json:"set_viewing_key,omitempty"`
}

// InitMsg creates the pool
type InitMsg struct {
	Admin                    *string     `json:"admin,omitempty"`
	Triggerer                *string     `json:"triggerer,omitempty"`
	Token                    ContractMsg `json:"token"`
	StakingContract          ContractMsg `json:"staking_contract"`
	ViewingKey               string      `json:"viewing_key"`
	OwnAddress               string      `json:"own_address,omitempty"`
	PrngSeed                 string      `json:"prng_seed"` // base64
	TriggererSharePercentage uint64      `json:"triggerer_share_percentage"`
	LotteryDuration          *uint64     `json:"lottery_duration,omitempty"`
}

// ReceiveMsg is the token contract's notification that tokens were sent to the pool
type ReceiveMsg struct {
	From   string        `json:"from"`
	Amount string        `json:"amount"`
	Msg    ReceiveAction `json:"msg"`
}

// ReceiveAction says what the received tokens are for
type ReceiveAction struct {
	Deposit *Empty `json:"deposit,omitempty"`
}

// AmountMsg carries an optional amount; absent means "everything"
type AmountMsg struct {
	Amount *string `json:"amount,omitempty"`
}

type AddressMsg struct {
	Address string `json:"address"`
}

type ShareMsg struct {
	Percentage uint64 `json:"percentage"`
}

type DurationMsg struct {
	Duration uint64 `json:"duration"`
}

type ContractMsg struct {
	Address  string `json:"address"`
	CodeHash string `json:"code_hash"`
}

func (c ContractMsg) contract() entities.Contract {
	return entities.Contract{Address: c.Address, CodeHash: c.CodeHash}
}

type CreateViewingKeyMsg struct {
	Entropy string `json:"entropy"`
}

type SetViewingKeyMsg struct {
	Key string `json:"key"`
}

// Tag returns the name of the single action the message carries
func (m *HandleMsg) Tag() (string, error) {
	return singleTag([]taggedField{
		{"init", m.Init != nil},
		{"receive", m.Receive != nil},
		{"trigger_withdraw", m.TriggerWithdraw != nil},
		{"withdraw", m.Withdraw != nil},
		{"redelegate", m.Redelegate != nil},
		{"claim_rewards", m.ClaimRewards != nil},
		{"triggering_cost_withdraw", m.TriggeringCostWithdraw != nil},
		{"change_admin", m.ChangeAdmin != nil},
		{"change_triggerer", m.ChangeTriggerer != nil},
		{"change_triggerer_share", m.ChangeTriggererShare != nil},
		{"change_lottery_duration", m.ChangeLotteryDuration != nil},
		{"change_staking_contract", m.ChangeStakingContract != nil},
		{"stop_contract", m.StopContract != nil},
		{"allow_withdraw_when_stopped", m.AllowWithdrawWhenStopped != nil},
		{"resume_contract", m.ResumeContract != nil},
		{"emergency_redeem_from_staking", m.EmergencyRedeemFromStaking != nil},
		{"redelegate_to_contract", m.RedelegateToContract != nil},
		{"create_viewing_key", m.CreateViewingKey != nil},
		{"set_viewing_key", m.SetViewingKey != nil},
	})
}

// QueryMsg carries exactly one read-only question
type QueryMsg struct {
	LotteryInfo          *Empty       `json:"lottery_info,omitempty"`
	TotalRewards         *HeightQuery `json:"total_rewards,omitempty"`
	TotalDeposits        *Empty       `json:"total_deposits,omitempty"`
	ContractStatus       *Empty       `json:"contract_status,omitempty"`
	RewardToken          *Empty       `json:"reward_token,omitempty"`
	Balance              *AuthQuery   `json:"balance,omitempty"`
	AvailableForWithdraw *AuthQuery   `json:"available_for_withdraw,omitempty"`
	UserPastRecords      *AuthQuery   `json:"user_past_records,omitempty"`
	UserAllPastRecords   *AuthQuery   `json:"user_all_past_records,omitempty"`
	PastRecords          *Empty       `json:"past_records,omitempty"`
	PastAllRecords       *Empty       `json:"past_all_records,omitempty"`
}

// HeightQuery asks at a block height; zero means the current height
type HeightQuery struct {
	Height uint64 `json:"height"`
}

// AuthQuery is a per-user question guarded by a viewing key
type AuthQuery struct {
	Address string `json:"address"`
	Key     string `json:"key"`
}

// Tag returns the name of the single question the message carries
func (m *QueryMsg) Tag() (string, error) {
	return singleTag([]taggedField{
		{"lottery_info", m.LotteryInfo != nil},
		{"total_rewards", m.TotalRewards != nil},
		{"total_deposits", m.TotalDeposits != nil},
		{"contract_status", m.ContractStatus != nil},
		{"reward_token", m.RewardToken != nil},
		{"balance", m.Balance != nil},
		{"available_for_withdraw", m.AvailableForWithdraw != nil},
		{"user_past_records", m.UserPastRecords != nil},
		{"user_all_past_records", m.UserAllPastRecords != nil},
		{"past_records", m.PastRecords != nil},
		{"past_all_records", m.PastAllRecords != nil},
	})
}

type taggedField struct {
	name string
	set  bool
}

func singleTag(fields []taggedField) (string, error) {
	tag := ""
	for _, f := range fields {
		if !f.set {
			continue
		}
		if tag != "" {
			return "", fmt.Errorf("%w: both %s and %s are set", entities.ErrInvalidMessage, tag, f.name)
		}
		tag = f.name
	}
	if tag == "" {
		return "", fmt.Errorf("%w: no action set", entities.ErrInvalidMessage)
	}
	return tag, nil
}

// Answer statuses
const (
	StatusSuccess = "success"
	// StatusFailure marks a draw that advanced the window without a winner
	StatusFailure = "failure"
)

// HandleAnswer is the result of a state-changing call
type HandleAnswer struct {
	Type   string        `json:"type"`
	Status string        `json:"status"`
	Amount *string       `json:"amount,omitempty"`
	Key    *string       `json:"key,omitempty"`
	Draw   *DrawAnswer   `json:"draw,omitempty"`
	Window *WindowAnswer `json:"window,omitempty"`
}

// DrawAnswer describes a draw attempt
type DrawAnswer struct {
	Outcome    string `json:"outcome"`
	Winner     string `json:"winner,omitempty"`
	Prize      string `json:"prize"`
	Fee        string `json:"fee"`
	Payout     string `json:"payout"`
	Candidates int    `json:"candidates"`
}

// WindowAnswer describes a lottery window
type WindowAnswer struct {
	StartTime uint64 `json:"start_time"`
	EndTime   uint64 `json:"end_time"`
	Duration  uint64 `json:"duration"`
}

// QueryAnswer is the result of a read-only call. Exactly one field besides Type is set.
type QueryAnswer struct {
	Type            string                 `json:"type"`
	LotteryInfo     *LotteryInfoAnswer     `json:"lottery_info,omitempty"`
	Amount          *string                `json:"amount,omitempty"`
	ContractStatus  *ContractStatusAnswer  `json:"contract_status,omitempty"`
	RewardToken     *ContractMsg           `json:"reward_token,omitempty"`
	Records         *RecordsAnswer         `json:"records,omitempty"`
	ViewingKeyError *ViewingKeyErrorAnswer `json:"viewing_key_error,omitempty"`
}

type LotteryInfoAnswer struct {
	StartTime             uint64 `json:"start_time"`
	EndTime               uint64 `json:"end_time"`
	Duration              uint64 `json:"duration"`
	IsStopped             bool   `json:"is_stopped"`
	IsStoppedWithWithdraw bool   `json:"is_stopped_with_withdraw"`
}

type ContractStatusAnswer struct {
	IsStopped bool `json:"is_stopped"`
}

type RecordsAnswer struct {
	Records []RecordAnswer `json:"records"`
}

type RecordAnswer struct {
	Winner    string `json:"winner"`
	Amount    string `json:"amount"`
	Timestamp uint64 `json:"timestamp"`
}

type ViewingKeyErrorAnswer struct {
	Msg string `json:"msg"`
}

const wrongViewingKeyMsg = "Wrong viewing key for this address or viewing key not set"
