package ledger

import (
	"context"
	"sync"
)

// MemorySlotStore keeps slots in process memory.
type MemorySlotStore struct {
	mu    sync.Mutex
	slots []Slot
}

// NewMemorySlotStore returns an empty store.
func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{}
}

func (m *MemorySlotStore) GetSlot(_ context.Context, index uint64) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index >= uint64(len(m.slots)) {
		return nil, nil
	}
	slot := m.slots[index]
	return &slot, nil
}

func (m *MemorySlotStore) PutSlot(_ context.Context, slot *Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for uint64(len(m.slots)) <= slot.Index {
		m.slots = append(m.slots, Slot{Index: uint64(len(m.slots))})
	}
	m.slots[slot.Index] = *slot
	return nil
}

func (m *MemorySlotStore) VacantSlot(_ context.Context) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		if !m.slots[i].Occupied {
			slot := m.slots[i]
			return &slot, nil
		}
	}
	return nil, nil
}

func (m *MemorySlotStore) SlotCount(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.slots)), nil
}

func (m *MemorySlotStore) ForEachOccupied(_ context.Context, fn func(*Slot) error) error {
	m.mu.Lock()
	snapshot := make([]Slot, len(m.slots))
	copy(snapshot, m.slots)
	m.mu.Unlock()

	for i := range snapshot {
		if !snapshot[i].Occupied {
			continue
		}
		if err := fn(&snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy of every slot, for rollback in tests and simulations.
func (m *MemorySlotStore) Snapshot() []Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Slot, len(m.slots))
	copy(out, m.slots)
	return out
}

// Restore replaces the store's contents with slots.
func (m *MemorySlotStore) Restore(slots []Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = make([]Slot, len(slots))
	copy(m.slots, slots)
}
