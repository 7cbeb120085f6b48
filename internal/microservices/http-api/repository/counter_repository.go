package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// The upsert takes a row lock on the counter, so concurrent callers on any
// instance are serialized by Postgres and each sees a distinct value.
const incrementCounterSQL = `INSERT INTO id_counters (kind, value) VALUES (?, 1)
ON CONFLICT (kind) DO UPDATE SET value = id_counters.value + 1
RETURNING value`

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) Increment(ctx context.Context, kind string) (int64, error) {
	var value int64
	result := r.db.WithContext(ctx).Raw(incrementCounterSQL, kind).Scan(&value)
	if result.Error != nil {
		return 0, fmt.Errorf("increment counter %q: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("increment counter %q: no row returned", kind)
	}
	return value, nil
}
