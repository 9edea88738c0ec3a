package ledger

import (
	"context"
	"fmt"

	"prizepool/domain/entities"

	"github.com/holiman/uint256"
)

// ConsumeFIFO removes amount from refs, oldest entry first. Fully consumed
// entries are dropped; a partially consumed entry stays at the head.
// It returns the refs that still point at live entries.
func ConsumeFIFO(ctx context.Context, arena *Arena, refs []entities.SlotRef, amount uint256.Int) ([]entities.SlotRef, error) {
	outstanding := amount
	remaining := refs

	for !outstanding.IsZero() {
		if len(remaining) == 0 {
			return nil, fmt.Errorf("%w: %s left unmatched", entities.ErrLedgerShortfall, outstanding.Dec())
		}
		red, err := arena.ReduceOrRemove(ctx, remaining[0], outstanding)
		if err != nil {
			return nil, fmt.Errorf("failed to consume stake entry: %w", err)
		}
		outstanding = red.Remainder
		if red.Vacated {
			remaining = remaining[1:]
		}
	}

	return append([]entities.SlotRef(nil), remaining...), nil
}
