package infrastructure

import (
	"prizepool/database"
	"prizepool/domain/interfaces"
	"prizepool/repository"
)

// TransactionalRepositoryFactory creates the database half of a unit of work
type TransactionalRepositoryFactory interface {
	Create() interfaces.TransactionalRepositories
}

// BusClient publishes and requests over NATS
type BusClient interface {
	MessagePublisher
	Requester
}

// UnitOfWorkFactory creates units of work that combine a database transaction
// with an event publisher and a command outbox
type UnitOfWorkFactory struct {
	repoFactory    TransactionalRepositoryFactory
	eventPublisher interfaces.EventPublisher
	client         BusClient
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher, client BusClient) *UnitOfWorkFactory {
	return newUnitOfWorkFactory(repository.NewUnitOfWorkFactory(db), eventPublisher, client)
}

func newUnitOfWorkFactory(repoFactory TransactionalRepositoryFactory, eventPublisher interfaces.EventPublisher, client BusClient) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repoFactory,
		eventPublisher: eventPublisher,
		client:         client,
	}
}

// Create returns an unstarted unit of work
func (f *UnitOfWorkFactory) Create() interfaces.UnitOfWork {
	outbox := NewMessageOutbox(f.client)
	return &unitOfWork{
		inner:                  f.repoFactory.Create(),
		transactionalPublisher: NewNATSTransactionalPublisher(f.eventPublisher),
		outbox:                 outbox,
		yieldSource:            NewNATSYieldSource(outbox, f.client),
		tokenTransferer:        NewNATSTokenTransferer(outbox),
	}
}
