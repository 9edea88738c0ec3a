package testhelpers

import (
	"context"
	"sync"

	"prizepool/domain/entities"
	"prizepool/events"

	"github.com/holiman/uint256"
)

// FakeYieldSource records outbound staking messages and reports a settable pending reward.
type FakeYieldSource struct {
	mu          sync.Mutex
	pending     uint256.Int
	Deposits    []uint256.Int
	Redeems     []uint256.Int
	ViewingKeys []string
	Queries     int
	QueryErr    error
}

// SetPendingReward sets the reward returned by QueryPendingReward.
func (f *FakeYieldSource) SetPendingReward(v uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = entities.AmountOf(v)
}

func (f *FakeYieldSource) Deposit(_ context.Context, _ entities.Contract, amount uint256.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deposits = append(f.Deposits, amount)
	return nil
}

func (f *FakeYieldSource) Redeem(_ context.Context, _ entities.Contract, amount uint256.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Redeems = append(f.Redeems, amount)
	return nil
}

func (f *FakeYieldSource) SetViewingKey(_ context.Context, _ entities.Contract, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ViewingKeys = append(f.ViewingKeys, key)
	return nil
}

func (f *FakeYieldSource) QueryPendingReward(context.Context, entities.Contract, string, string, uint64) (uint256.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries++
	if f.QueryErr != nil {
		return uint256.Int{}, f.QueryErr
	}
	return f.pending, nil
}

// Transfer is one recorded token transfer.
type Transfer struct {
	Recipient string
	Amount    uint256.Int
}

// FakeTokenTransferer records token transfers.
type FakeTokenTransferer struct {
	mu        sync.Mutex
	Transfers []Transfer
}

func (f *FakeTokenTransferer) Transfer(_ context.Context, _ entities.Contract, recipient string, amount uint256.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Transfers = append(f.Transfers, Transfer{Recipient: recipient, Amount: amount})
	return nil
}

// RecordingPublisher records published events.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// OfType returns the recorded events of type t.
func (p *RecordingPublisher) OfType(t events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.Events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}
