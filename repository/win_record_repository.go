package repository

import (
	"context"
	"fmt"

	"prizepool/database"
	"prizepool/domain/entities"
)

// WinRecordRepository stores prize history
type WinRecordRepository struct {
	q Queryable
}

// NewWinRecordRepository creates a repository outside any transaction
func NewWinRecordRepository(db *database.DB) *WinRecordRepository {
	return &WinRecordRepository{q: db.Pool}
}

func newWinRecordRepositoryWithTx(tx Queryable) *WinRecordRepository {
	return &WinRecordRepository{q: tx}
}

// Create appends a record and sets its ID
func (r *WinRecordRepository) Create(ctx context.Context, record *entities.WinRecord) error {
	query := `
		INSERT INTO win_records (winner, amount, won_at)
		VALUES ($1, $2::numeric, $3)
		RETURNING id
	`

	wonAt, err := bigint("won_at", record.WonAt)
	if err != nil {
		return err
	}

	err = r.q.QueryRow(ctx, query, record.Winner, numeric(record.Amount), wonAt).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to create win record: %w", err)
	}
	return nil
}

// GetRecent returns the latest records, most recent first
func (r *WinRecordRepository) GetRecent(ctx context.Context, limit int) ([]*entities.WinRecord, error) {
	query := `
		SELECT id, winner, amount::text, won_at
		FROM win_records
		ORDER BY id DESC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// GetAll returns every record in chronological order
func (r *WinRecordRepository) GetAll(ctx context.Context) ([]*entities.WinRecord, error) {
	query := `
		SELECT id, winner, amount::text, won_at
		FROM win_records
		ORDER BY id
	`
	return r.list(ctx, query)
}

// GetRecentByWinner returns a winner's latest records, most recent first
func (r *WinRecordRepository) GetRecentByWinner(ctx context.Context, winner string, limit int) ([]*entities.WinRecord, error) {
	query := `
		SELECT id, winner, amount::text, won_at
		FROM win_records
		WHERE winner = $1
		ORDER BY id DESC
		LIMIT $2
	`
	return r.list(ctx, query, winner, limit)
}

// GetAllByWinner returns a winner's records in chronological order
func (r *WinRecordRepository) GetAllByWinner(ctx context.Context, winner string) ([]*entities.WinRecord, error) {
	query := `
		SELECT id, winner, amount::text, won_at
		FROM win_records
		WHERE winner = $1
		ORDER BY id
	`
	return r.list(ctx, query, winner)
}

func (r *WinRecordRepository) list(ctx context.Context, query string, args ...any) ([]*entities.WinRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query win records: %w", err)
	}
	defer rows.Close()

	var records []*entities.WinRecord
	for rows.Next() {
		var record entities.WinRecord
		var amount string
		var wonAt int64
		if err := rows.Scan(&record.ID, &record.Winner, &amount, &wonAt); err != nil {
			return nil, fmt.Errorf("failed to scan win record: %w", err)
		}
		if record.Amount, err = parseNumeric("amount", amount); err != nil {
			return nil, err
		}
		record.WonAt = uint64(wonAt)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating win records: %w", err)
	}

	return records, nil
}
