package repository

import (
	"context"
	"fmt"

	"prizepool/database"
	"prizepool/domain/ledger"

	"github.com/jackc/pgx/v5"
)

// StakeSlotRepository stores the stake ledger arena, one row per slot
type StakeSlotRepository struct {
	q Queryable
}

// NewStakeSlotRepository creates a repository outside any transaction
func NewStakeSlotRepository(db *database.DB) *StakeSlotRepository {
	return &StakeSlotRepository{q: db.Pool}
}

func newStakeSlotRepositoryWithTx(tx Queryable) *StakeSlotRepository {
	return &StakeSlotRepository{q: tx}
}

const slotColumns = `slot_index, generation, occupied, owner, amount::text, entry_time`

func scanSlot(row pgx.Row) (*ledger.Slot, error) {
	var index, generation, entryTime int64
	var amount string
	var slot ledger.Slot
	if err := row.Scan(&index, &generation, &slot.Occupied, &slot.Entry.Owner, &amount, &entryTime); err != nil {
		return nil, err
	}
	v, err := parseNumeric("amount", amount)
	if err != nil {
		return nil, err
	}
	slot.Index = uint64(index)
	slot.Generation = uint64(generation)
	slot.Entry.Amount = v
	slot.Entry.EntryTime = uint64(entryTime)
	return &slot, nil
}

// GetSlot returns the slot at index, or nil when it was never allocated
func (r *StakeSlotRepository) GetSlot(ctx context.Context, index uint64) (*ledger.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM stake_slots WHERE slot_index = $1`

	slot, err := scanSlot(r.q.QueryRow(ctx, query, int64(index)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stake slot %d: %w", index, err)
	}
	return slot, nil
}

// PutSlot inserts or replaces a slot
func (r *StakeSlotRepository) PutSlot(ctx context.Context, slot *ledger.Slot) error {
	query := `
		INSERT INTO stake_slots (slot_index, generation, occupied, owner, amount, entry_time)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		ON CONFLICT (slot_index) DO UPDATE SET
			generation = EXCLUDED.generation,
			occupied = EXCLUDED.occupied,
			owner = EXCLUDED.owner,
			amount = EXCLUDED.amount,
			entry_time = EXCLUDED.entry_time
	`

	generation, err := bigint("generation", slot.Generation)
	if err != nil {
		return err
	}
	entryTime, err := bigint("entry_time", slot.Entry.EntryTime)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(ctx, query,
		int64(slot.Index),
		generation,
		slot.Occupied,
		slot.Entry.Owner,
		numeric(slot.Entry.Amount),
		entryTime,
	)
	if err != nil {
		return fmt.Errorf("failed to put stake slot %d: %w", slot.Index, err)
	}
	return nil
}

// VacantSlot returns the lowest vacated slot, or nil when every slot is occupied
func (r *StakeSlotRepository) VacantSlot(ctx context.Context) (*ledger.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM stake_slots WHERE NOT occupied ORDER BY slot_index LIMIT 1`

	slot, err := scanSlot(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vacant stake slot: %w", err)
	}
	return slot, nil
}

// SlotCount returns the number of slots ever allocated
func (r *StakeSlotRepository) SlotCount(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stake_slots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stake slots: %w", err)
	}
	return uint64(count), nil
}

// ForEachOccupied visits occupied slots in ascending index order
func (r *StakeSlotRepository) ForEachOccupied(ctx context.Context, fn func(*ledger.Slot) error) error {
	query := `SELECT ` + slotColumns + ` FROM stake_slots WHERE occupied ORDER BY slot_index`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query stake slots: %w", err)
	}
	defer rows.Close()

	// Collect first: fn may issue queries on the same connection.
	var slots []*ledger.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return fmt.Errorf("failed to scan stake slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating stake slots: %w", err)
	}
	rows.Close()

	for _, slot := range slots {
		if err := fn(slot); err != nil {
			return err
		}
	}
	return nil
}
