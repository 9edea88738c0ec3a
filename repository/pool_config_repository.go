package repository

import (
	"context"
	"fmt"

	"prizepool/database"
	"prizepool/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PoolConfigRepository stores the singleton pool configuration row
type PoolConfigRepository struct {
	q Queryable
}

// NewPoolConfigRepository creates a repository outside any transaction
func NewPoolConfigRepository(db *database.DB) *PoolConfigRepository {
	return &PoolConfigRepository{q: db.Pool}
}

func newPoolConfigRepositoryWithTx(tx Queryable) *PoolConfigRepository {
	return &PoolConfigRepository{q: tx}
}

// Get returns the configuration, or nil before initialization. The row is
// locked for the rest of the transaction so calls on the pool run one at a time.
func (r *PoolConfigRepository) Get(ctx context.Context) (*entities.PoolConfig, error) {
	query := `
		SELECT admin, triggerer, triggerer_share_percentage,
		       token_address, token_code_hash, staking_address, staking_code_hash,
		       staking_viewing_key, own_address, lifecycle, recovered_funds::text
		FROM pool_config
		WHERE id = 1
		FOR UPDATE
	`

	var cfg entities.PoolConfig
	var share int64
	var lifecycle, recovered string
	err := r.q.QueryRow(ctx, query).Scan(
		&cfg.Admin,
		&cfg.Triggerer,
		&share,
		&cfg.Token.Address,
		&cfg.Token.CodeHash,
		&cfg.StakingContract.Address,
		&cfg.StakingContract.CodeHash,
		&cfg.StakingViewingKey,
		&cfg.OwnAddress,
		&lifecycle,
		&recovered,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool config: %w", err)
	}

	cfg.TriggererSharePercentage = uint64(share)
	cfg.Lifecycle = entities.Lifecycle(lifecycle)
	if !cfg.Lifecycle.Valid() {
		return nil, fmt.Errorf("invalid lifecycle %q in pool config", lifecycle)
	}
	if cfg.RecoveredFunds, err = parseNumeric("recovered_funds", recovered); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save inserts or replaces the configuration
func (r *PoolConfigRepository) Save(ctx context.Context, cfg *entities.PoolConfig) error {
	query := `
		INSERT INTO pool_config (
			id, admin, triggerer, triggerer_share_percentage,
			token_address, token_code_hash, staking_address, staking_code_hash,
			staking_viewing_key, own_address, lifecycle, recovered_funds
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric)
		ON CONFLICT (id) DO UPDATE SET
			admin = EXCLUDED.admin,
			triggerer = EXCLUDED.triggerer,
			triggerer_share_percentage = EXCLUDED.triggerer_share_percentage,
			token_address = EXCLUDED.token_address,
			token_code_hash = EXCLUDED.token_code_hash,
			staking_address = EXCLUDED.staking_address,
			staking_code_hash = EXCLUDED.staking_code_hash,
			staking_viewing_key = EXCLUDED.staking_viewing_key,
			own_address = EXCLUDED.own_address,
			lifecycle = EXCLUDED.lifecycle,
			recovered_funds = EXCLUDED.recovered_funds,
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		cfg.Admin,
		cfg.Triggerer,
		int64(cfg.TriggererSharePercentage),
		cfg.Token.Address,
		cfg.Token.CodeHash,
		cfg.StakingContract.Address,
		cfg.StakingContract.CodeHash,
		cfg.StakingViewingKey,
		cfg.OwnAddress,
		string(cfg.Lifecycle),
		numeric(cfg.RecoveredFunds),
	)
	if err != nil {
		return fmt.Errorf("failed to save pool config: %w", err)
	}
	return nil
}
