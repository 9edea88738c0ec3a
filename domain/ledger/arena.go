// Package ledger stores stake entries in a generational slot arena.
//
// Every deposit occupies one slot. Vacated slots are reused by later deposits
// with their generation bumped, so a SlotRef held by an account never silently
// resolves to somebody else's entry.
package ledger

import (
	"context"
	"fmt"

	"prizepool/domain/entities"

	"github.com/holiman/uint256"
)

// Slot is one cell of the arena.
type Slot struct {
	Index      uint64
	Generation uint64
	Occupied   bool
	Entry      entities.StakeEntry
}

// Ref returns the handle addressing the slot's current generation.
func (s *Slot) Ref() entities.SlotRef {
	return entities.SlotRef{Index: s.Index, Generation: s.Generation}
}

// SlotStore persists arena slots.
type SlotStore interface {
	// GetSlot returns nil when the index was never allocated.
	GetSlot(ctx context.Context, index uint64) (*Slot, error)
	PutSlot(ctx context.Context, slot *Slot) error
	// VacantSlot returns the lowest vacated slot, or nil when none exists.
	VacantSlot(ctx context.Context) (*Slot, error)
	// SlotCount is the number of slots ever allocated.
	SlotCount(ctx context.Context) (uint64, error)
	// ForEachOccupied visits occupied slots in ascending index order.
	ForEachOccupied(ctx context.Context, fn func(*Slot) error) error
}

// Reduction reports what ReduceOrRemove did to a slot.
type Reduction struct {
	Vacated bool
	Taken   uint256.Int
	// Remainder is the part of the requested amount the slot could not cover.
	Remainder uint256.Int
}

// Arena is the stake ledger.
type Arena struct {
	store SlotStore
}

// NewArena creates an arena over store.
func NewArena(store SlotStore) *Arena {
	return &Arena{store: store}
}

// Insert stores entry, reusing a vacated slot when one exists.
func (a *Arena) Insert(ctx context.Context, entry entities.StakeEntry) (entities.SlotRef, error) {
	slot, err := a.store.VacantSlot(ctx)
	if err != nil {
		return entities.SlotRef{}, fmt.Errorf("failed to find vacant slot: %w", err)
	}

	if slot != nil {
		slot.Generation++
	} else {
		count, err := a.store.SlotCount(ctx)
		if err != nil {
			return entities.SlotRef{}, fmt.Errorf("failed to count slots: %w", err)
		}
		slot = &Slot{Index: count}
	}
	slot.Occupied = true
	slot.Entry = entry

	if err := a.store.PutSlot(ctx, slot); err != nil {
		return entities.SlotRef{}, fmt.Errorf("failed to store slot %d: %w", slot.Index, err)
	}
	return slot.Ref(), nil
}

// Get returns the entry ref points to.
func (a *Arena) Get(ctx context.Context, ref entities.SlotRef) (entities.StakeEntry, error) {
	slot, err := a.resolve(ctx, ref)
	if err != nil {
		return entities.StakeEntry{}, err
	}
	return slot.Entry, nil
}

// ReduceOrRemove takes up to amount from the entry at ref. An entry whose amount
// is fully consumed is removed and its slot vacated.
func (a *Arena) ReduceOrRemove(ctx context.Context, ref entities.SlotRef, amount uint256.Int) (Reduction, error) {
	slot, err := a.resolve(ctx, ref)
	if err != nil {
		return Reduction{}, err
	}

	var red Reduction
	if amount.Lt(&slot.Entry.Amount) {
		left, err := entities.Sub(slot.Entry.Amount, amount)
		if err != nil {
			return Reduction{}, err
		}
		slot.Entry.Amount = left
		red.Taken = amount
	} else {
		remainder, err := entities.Sub(amount, slot.Entry.Amount)
		if err != nil {
			return Reduction{}, err
		}
		red = Reduction{Vacated: true, Taken: slot.Entry.Amount, Remainder: remainder}
		slot.Occupied = false
		slot.Entry = entities.StakeEntry{}
	}

	if err := a.store.PutSlot(ctx, slot); err != nil {
		return Reduction{}, fmt.Errorf("failed to store slot %d: %w", slot.Index, err)
	}
	return red, nil
}

// ForEach visits every live entry in slot order.
func (a *Arena) ForEach(ctx context.Context, fn func(entities.SlotRef, entities.StakeEntry) error) error {
	return a.store.ForEachOccupied(ctx, func(s *Slot) error {
		return fn(s.Ref(), s.Entry)
	})
}

func (a *Arena) resolve(ctx context.Context, ref entities.SlotRef) (*Slot, error) {
	slot, err := a.store.GetSlot(ctx, ref.Index)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %d: %w", ref.Index, err)
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: index %d", entities.ErrSlotNotFound, ref.Index)
	}
	if !slot.Occupied || slot.Generation != ref.Generation {
		return nil, fmt.Errorf("%w: index %d generation %d", entities.ErrStaleSlot, ref.Index, ref.Generation)
	}
	return slot, nil
}
