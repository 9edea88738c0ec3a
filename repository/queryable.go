package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by *pgxpool.Pool and pgx.Tx so repositories can run
// inside or outside a transaction.
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Amounts are stored as NUMERIC(78,0), which holds any 256-bit value. They are
// written as decimal text and read back with ::text.

func numeric(v uint256.Int) string {
	return v.Dec()
}

func parseNumeric(column, text string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(text)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("invalid %s %q: %w", column, text, err)
	}
	return *v, nil
}

// bigint converts v for a BIGINT column, rejecting values past the signed range.
func bigint(column string, v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%s %d exceeds the storable range", column, v)
	}
	return int64(v), nil
}
