package repository

import (
	"context"
	"fmt"

	"prizepool/database"
	"prizepool/domain/entities"

	"github.com/jackc/pgx/v5"
)

// SupplyPoolRepository stores the pool-wide accounting buckets
type SupplyPoolRepository struct {
	q Queryable
}

// NewSupplyPoolRepository creates a repository outside any transaction
func NewSupplyPoolRepository(db *database.DB) *SupplyPoolRepository {
	return &SupplyPoolRepository{q: db.Pool}
}

func newSupplyPoolRepositoryWithTx(tx Queryable) *SupplyPoolRepository {
	return &SupplyPoolRepository{q: tx}
}

// Get returns the buckets, or nil before initialization
func (r *SupplyPoolRepository) Get(ctx context.Context) (*entities.SupplyPool, error) {
	query := `
		SELECT total_staked::text, total_restaked::text, pending_rewards::text, trigger_fee_accrued::text
		FROM supply_pool
		WHERE id = 1
	`

	var staked, restaked, pending, fee string
	err := r.q.QueryRow(ctx, query).Scan(&staked, &restaked, &pending, &fee)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supply pool: %w", err)
	}

	var pool entities.SupplyPool
	if pool.TotalStaked, err = parseNumeric("total_staked", staked); err != nil {
		return nil, err
	}
	if pool.TotalRestaked, err = parseNumeric("total_restaked", restaked); err != nil {
		return nil, err
	}
	if pool.PendingRewards, err = parseNumeric("pending_rewards", pending); err != nil {
		return nil, err
	}
	if pool.TriggerFeeAccrued, err = parseNumeric("trigger_fee_accrued", fee); err != nil {
		return nil, err
	}
	return &pool, nil
}

// Save inserts or replaces the buckets
func (r *SupplyPoolRepository) Save(ctx context.Context, pool *entities.SupplyPool) error {
	query := `
		INSERT INTO supply_pool (id, total_staked, total_restaked, pending_rewards, trigger_fee_accrued)
		VALUES (1, $1::numeric, $2::numeric, $3::numeric, $4::numeric)
		ON CONFLICT (id) DO UPDATE SET
			total_staked = EXCLUDED.total_staked,
			total_restaked = EXCLUDED.total_restaked,
			pending_rewards = EXCLUDED.pending_rewards,
			trigger_fee_accrued = EXCLUDED.trigger_fee_accrued,
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		numeric(pool.TotalStaked),
		numeric(pool.TotalRestaked),
		numeric(pool.PendingRewards),
		numeric(pool.TriggerFeeAccrued),
	)
	if err != nil {
		return fmt.Errorf("failed to save supply pool: %w", err)
	}
	return nil
}
