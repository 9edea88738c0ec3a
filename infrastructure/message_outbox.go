package infrastructure

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// MessagePublisher defines the interface for publishing messages to a message bus
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type outboundMessage struct {
	subject string
	data    []byte
}

// MessageOutbox holds raw messages until the surrounding transaction commits
type MessageOutbox struct {
	publisher MessagePublisher
	pending   []outboundMessage
}

// NewMessageOutbox creates an outbox that flushes to publisher
func NewMessageOutbox(publisher MessagePublisher) *MessageOutbox {
	return &MessageOutbox{publisher: publisher}
}

// Publish queues a message
func (o *MessageOutbox) Publish(_ context.Context, subject string, data []byte) error {
	o.pending = append(o.pending, outboundMessage{subject: subject, data: data})
	return nil
}

// Len returns the number of queued messages
func (o *MessageOutbox) Len() int {
	return len(o.pending)
}

// Flush publishes queued messages in order. A failed message is logged and
// the rest are still sent; the error reports how many failed.
func (o *MessageOutbox) Flush(ctx context.Context) error {
	log.WithField("pendingMessageCount", len(o.pending)).Debug("Flushing message outbox")

	failed := 0
	for _, msg := range o.pending {
		if err := o.publisher.Publish(ctx, msg.subject, msg.data); err != nil {
			failed++
			log.WithFields(log.Fields{
				"subject": msg.subject,
				"error":   err,
			}).Error("Failed to publish message during flush")
		}
	}
	o.pending = o.pending[:0]

	if failed > 0 {
		return fmt.Errorf("failed to publish %d outbound messages", failed)
	}
	return nil
}

// Discard drops queued messages; called on rollback
func (o *MessageOutbox) Discard() {
	log.WithField("discardedMessageCount", len(o.pending)).Debug("Discarding message outbox")
	o.pending = o.pending[:0]
}
