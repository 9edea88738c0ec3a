package repository

import (
	"context"
	"fmt"

	"prizepool/database"
	"prizepool/domain/entities"

	"github.com/jackc/pgx/v5"
)

// LotteryWindowRepository stores the current draw window and randomness state
type LotteryWindowRepository struct {
	q Queryable
}

// NewLotteryWindowRepository creates a repository outside any transaction
func NewLotteryWindowRepository(db *database.DB) *LotteryWindowRepository {
	return &LotteryWindowRepository{q: db.Pool}
}

func newLotteryWindowRepositoryWithTx(tx Queryable) *LotteryWindowRepository {
	return &LotteryWindowRepository{q: tx}
}

// Get returns the window, or nil before initialization
func (r *LotteryWindowRepository) Get(ctx context.Context) (*entities.LotteryWindow, error) {
	query := `
		SELECT entropy, seed, duration, start_time, end_time
		FROM lottery_window
		WHERE id = 1
	`

	var entropy, seed []byte
	var duration, start, end int64
	err := r.q.QueryRow(ctx, query).Scan(&entropy, &seed, &duration, &start, &end)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery window: %w", err)
	}
	if len(entropy) != 32 || len(seed) != 32 {
		return nil, fmt.Errorf("corrupt lottery window: entropy %d bytes, seed %d bytes", len(entropy), len(seed))
	}

	window := &entities.LotteryWindow{
		Duration:  uint64(duration),
		StartTime: uint64(start),
		EndTime:   uint64(end),
	}
	copy(window.Entropy[:], entropy)
	copy(window.Seed[:], seed)
	return window, nil
}

// Save inserts or replaces the window
func (r *LotteryWindowRepository) Save(ctx context.Context, window *entities.LotteryWindow) error {
	query := `
		INSERT INTO lottery_window (id, entropy, seed, duration, start_time, end_time)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			entropy = EXCLUDED.entropy,
			seed = EXCLUDED.seed,
			duration = EXCLUDED.duration,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			updated_at = NOW()
	`

	duration, err := bigint("duration", window.Duration)
	if err != nil {
		return err
	}
	start, err := bigint("start_time", window.StartTime)
	if err != nil {
		return err
	}
	end, err := bigint("end_time", window.EndTime)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(ctx, query, window.Entropy[:], window.Seed[:], duration, start, end)
	if err != nil {
		return fmt.Errorf("failed to save lottery window: %w", err)
	}
	return nil
}
