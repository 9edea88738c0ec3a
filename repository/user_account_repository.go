package repository

import (
	"context"
	"fmt"

	"prizepool/database"
	"prizepool/domain/entities"

	"github.com/jackc/pgx/v5"
)

// UserAccountRepository stores participant accounts. An account's ledger
// handles are kept as two parallel BIGINT arrays in FIFO order.
type UserAccountRepository struct {
	q Queryable
}

// NewUserAccountRepository creates a repository outside any transaction
func NewUserAccountRepository(db *database.DB) *UserAccountRepository {
	return &UserAccountRepository{q: db.Pool}
}

func newUserAccountRepositoryWithTx(tx Queryable) *UserAccountRepository {
	return &UserAccountRepository{q: tx}
}

// GetByAddress returns the account, or nil when the address never interacted with the pool
func (r *UserAccountRepository) GetByAddress(ctx context.Context, address string) (*entities.UserAccount, error) {
	query := `
		SELECT address, amount_delegated::text, available_for_withdraw::text, total_won::text,
		       entry_indexes, entry_generations
		FROM user_accounts
		WHERE address = $1
	`

	var account entities.UserAccount
	var delegated, available, won string
	var indexes, generations []int64
	err := r.q.QueryRow(ctx, query, address).Scan(
		&account.Address,
		&delegated,
		&available,
		&won,
		&indexes,
		&generations,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user account %s: %w", address, err)
	}

	if account.AmountDelegated, err = parseNumeric("amount_delegated", delegated); err != nil {
		return nil, err
	}
	if account.AvailableForWithdraw, err = parseNumeric("available_for_withdraw", available); err != nil {
		return nil, err
	}
	if account.TotalWon, err = parseNumeric("total_won", won); err != nil {
		return nil, err
	}
	if len(indexes) != len(generations) {
		return nil, fmt.Errorf("corrupt entries for %s: %d indexes, %d generations", address, len(indexes), len(generations))
	}
	account.Entries = make([]entities.SlotRef, len(indexes))
	for i := range indexes {
		account.Entries[i] = entities.SlotRef{Index: uint64(indexes[i]), Generation: uint64(generations[i])}
	}
	return &account, nil
}

// Save inserts or replaces an account
func (r *UserAccountRepository) Save(ctx context.Context, account *entities.UserAccount) error {
	query := `
		INSERT INTO user_accounts (
			address, amount_delegated, available_for_withdraw, total_won, entry_indexes, entry_generations
		)
		VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			amount_delegated = EXCLUDED.amount_delegated,
			available_for_withdraw = EXCLUDED.available_for_withdraw,
			total_won = EXCLUDED.total_won,
			entry_indexes = EXCLUDED.entry_indexes,
			entry_generations = EXCLUDED.entry_generations,
			updated_at = NOW()
	`

	indexes := make([]int64, len(account.Entries))
	generations := make([]int64, len(account.Entries))
	for i, ref := range account.Entries {
		indexes[i] = int64(ref.Index)
		generations[i] = int64(ref.Generation)
	}

	_, err := r.q.Exec(ctx, query,
		account.Address,
		numeric(account.AmountDelegated),
		numeric(account.AvailableForWithdraw),
		numeric(account.TotalWon),
		indexes,
		generations,
	)
	if err != nil {
		return fmt.Errorf("failed to save user account %s: %w", account.Address, err)
	}
	return nil
}
