package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// Requester performs synchronous request/reply calls
type Requester interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
}

// NATSYieldSource drives the staking contract through a relayer listening on NATS.
// State-changing calls are published as commands; the pending reward is a request.
type NATSYieldSource struct {
	commands  MessagePublisher
	requester Requester
}

// NewNATSYieldSource creates a yield source. commands is usually a MessageOutbox.
func NewNATSYieldSource(commands MessagePublisher, requester Requester) interfaces.YieldSource {
	return &NATSYieldSource{commands: commands, requester: requester}
}

func (y *NATSYieldSource) Deposit(ctx context.Context, target entities.Contract, amount uint256.Int) error {
	return publishCommand(ctx, y.commands, SubjectYieldDeposit, "deposit", target, AmountPayload{Amount: amount.Dec()})
}

func (y *NATSYieldSource) Redeem(ctx context.Context, target entities.Contract, amount uint256.Int) error {
	return publishCommand(ctx, y.commands, SubjectYieldRedeem, "redeem", target, AmountPayload{Amount: amount.Dec()})
}

func (y *NATSYieldSource) SetViewingKey(ctx context.Context, target entities.Contract, key string) error {
	return publishCommand(ctx, y.commands, SubjectYieldSetViewingKey, "set_viewing_key", target, ViewingKeyPayload{Key: key})
}

// QueryPendingReward asks the relayer for the reward the pool could claim at height
func (y *NATSYieldSource) QueryPendingReward(ctx context.Context, target entities.Contract, observer, key string, height uint64) (uint256.Int, error) {
	req, err := json.Marshal(PendingRewardRequest{
		Target:   contractRef(target),
		Observer: observer,
		Key:      key,
		Height:   height,
	})
	if err != nil {
		return uint256.Int{}, fmt.Errorf("failed to marshal pending reward request: %w", err)
	}

	data, err := y.requester.Request(ctx, SubjectPendingRewardQuery, req)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("failed to query pending reward: %w", err)
	}

	var reply PendingRewardReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return uint256.Int{}, fmt.Errorf("failed to decode pending reward reply: %w", err)
	}
	if reply.Error != "" {
		return uint256.Int{}, fmt.Errorf("staking contract rejected pending reward query: %s", reply.Error)
	}

	amount, err := uint256.FromDecimal(reply.Amount)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("invalid pending reward %q: %w", reply.Amount, err)
	}
	return *amount, nil
}

func publishCommand(ctx context.Context, publisher MessagePublisher, subject, commandType string, target entities.Contract, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", commandType, err)
	}

	envelope := CommandEnvelope{
		CommandID:     uuid.New().String(),
		CommandType:   commandType,
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Target:        contractRef(target),
		Payload:       body,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal %s command: %w", commandType, err)
	}

	if err := publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish %s command: %w", commandType, err)
	}

	log.WithFields(log.Fields{
		"commandId":   envelope.CommandID,
		"commandType": commandType,
		"target":      target.Address,
	}).Debug("Queued outbound command")
	return nil
}
