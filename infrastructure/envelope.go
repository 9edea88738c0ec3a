package infrastructure

import (
	"encoding/json"
	"time"

	"prizepool/domain/entities"
)

const sourceService = "prizepool"

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// ContractRef addresses an external contract in a command
type ContractRef struct {
	Address  string `json:"address"`
	CodeHash string `json:"code_hash"`
}

func contractRef(c entities.Contract) ContractRef {
	return ContractRef{Address: c.Address, CodeHash: c.CodeHash}
}

// CommandEnvelope wraps every outbound staking or token command.
// CommandID lets the relayer drop redeliveries.
type CommandEnvelope struct {
	CommandID     string          `json:"command_id"`
	CommandType   string          `json:"command_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Target        ContractRef     `json:"target"`
	Payload       json.RawMessage `json:"payload"`
}

// AmountPayload carries a deposit or redeem amount as a decimal string
type AmountPayload struct {
	Amount string `json:"amount"`
}

// ViewingKeyPayload carries the key registered at the staking contract
type ViewingKeyPayload struct {
	Key string `json:"key"`
}

// TransferPayload carries a token transfer
type TransferPayload struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// PendingRewardRequest is sent on the pending reward query subject
type PendingRewardRequest struct {
	Target   ContractRef `json:"target"`
	Observer string      `json:"observer"`
	Key      string      `json:"key"`
	Height   uint64      `json:"height"`
}

// PendingRewardReply answers a PendingRewardRequest
type PendingRewardReply struct {
	Amount string `json:"amount"`
	Error  string `json:"error,omitempty"`
}
