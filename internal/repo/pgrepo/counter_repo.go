package pgrepo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/dermaai/internal/pkg/dbutil"
)

type CounterRepo struct {
	db *sql.DB
}

func NewCounterRepo(db *sql.DB) *CounterRepo {
	return &CounterRepo{db: db}
}

// NextID is a single upsert round trip; concurrent callers serialize on the row lock.
func (r *CounterRepo) NextID(ctx context.Context, name string) (int64, error) {
	sqlStr := `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`
	sqlStr, args := dbutil.Finalize(sqlStr, []interface{}{name})
	var value int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
