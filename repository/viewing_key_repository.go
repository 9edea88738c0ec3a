package repository

import (
	"context"
	"fmt"

	"prizepool/database"

	"github.com/jackc/pgx/v5"
)

// ViewingKeyRepository stores sha256 hashes of viewing keys
type ViewingKeyRepository struct {
	q Queryable
}

// NewViewingKeyRepository creates a repository outside any transaction
func NewViewingKeyRepository(db *database.DB) *ViewingKeyRepository {
	return &ViewingKeyRepository{q: db.Pool}
}

func newViewingKeyRepositoryWithTx(tx Queryable) *ViewingKeyRepository {
	return &ViewingKeyRepository{q: tx}
}

// GetHash returns the stored hash, or nil when no key was set
func (r *ViewingKeyRepository) GetHash(ctx context.Context, address string) ([]byte, error) {
	var hash []byte
	err := r.q.QueryRow(ctx, `SELECT key_hash FROM viewing_keys WHERE address = $1`, address).Scan(&hash)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get viewing key for %s: %w", address, err)
	}
	return hash, nil
}

// SetHash inserts or replaces the hash for address
func (r *ViewingKeyRepository) SetHash(ctx context.Context, address string, hash []byte) error {
	query := `
		INSERT INTO viewing_keys (address, key_hash)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, address, hash); err != nil {
		return fmt.Errorf("failed to set viewing key for %s: %w", address, err)
	}
	return nil
}
