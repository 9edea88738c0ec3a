package infrastructure

import (
	"context"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"

	"github.com/holiman/uint256"
)

// NATSTokenTransferer publishes token transfer commands
type NATSTokenTransferer struct {
	commands MessagePublisher
}

// NewNATSTokenTransferer creates a transferer. commands is usually a MessageOutbox.
func NewNATSTokenTransferer(commands MessagePublisher) interfaces.TokenTransferer {
	return &NATSTokenTransferer{commands: commands}
}

func (t *NATSTokenTransferer) Transfer(ctx context.Context, token entities.Contract, recipient string, amount uint256.Int) error {
	return publishCommand(ctx, t.commands, SubjectTokenTransfer, "transfer", token, TransferPayload{
		Recipient: recipient,
		Amount:    amount.Dec(),
	})
}
