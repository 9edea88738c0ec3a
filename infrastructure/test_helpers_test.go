package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"prizepool/domain/interfaces"
	"prizepool/domain/testhelpers"
	"prizepool/events"
)

type sentMessage struct {
	subject string
	data    []byte
}

// fakeBusClient records published messages and answers requests with a canned reply
type fakeBusClient struct {
	mu         sync.Mutex
	published  []sentMessage
	requests   []sentMessage
	reply      []byte
	publishErr error
	requestErr error
}

func (c *fakeBusClient) Publish(_ context.Context, subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, sentMessage{subject: subject, data: data})
	return nil
}

func (c *fakeBusClient) Request(_ context.Context, subject string, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, sentMessage{subject: subject, data: data})
	if c.requestErr != nil {
		return nil, c.requestErr
	}
	return c.reply, nil
}

func (c *fakeBusClient) subjects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.published))
	for i, m := range c.published {
		out[i] = m.subject
	}
	return out
}

func decodeCommand(data []byte) (CommandEnvelope, error) {
	var env CommandEnvelope
	err := json.Unmarshal(data, &env)
	return env, err
}

// failingPublisher fails for one event type and records the rest
type failingPublisher struct {
	failFor   events.EventType
	published []events.Event
}

func (p *failingPublisher) Publish(event events.Event) error {
	if event.Type() == p.failFor {
		return errors.New("publish failed")
	}
	p.published = append(p.published, event)
	return nil
}

// memoryRepositoryFactory adapts the in-memory unit of work to the repository factory
type memoryRepositoryFactory struct {
	inner *testhelpers.MemoryUnitOfWorkFactory
}

func (f memoryRepositoryFactory) Create() interfaces.TransactionalRepositories {
	return f.inner.Create()
}
