package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umzugwerk/booking-api/internal/domain/document"
)

// nextCounterSQL is the atomic insert-or-increment-and-return statement the
// sequencer contract requires. The ON CONFLICT upsert makes the allocation a
// single indivisible operation: concurrent callers in the same bucket each
// observe a distinct counter value, with conflict retries handled inside
// PostgreSQL rather than by the application.
const nextCounterSQL = `INSERT INTO document_sequences (id, scope, time_bucket, counter)
	VALUES ($1, $2, $3, 1)
	ON CONFLICT (scope, time_bucket)
	DO UPDATE SET counter = document_sequences.counter + 1, updated_at = NOW()
	RETURNING counter`

var _ document.CounterStore = (*SequenceRepository)(nil)

// SequenceRepository implements document.CounterStore backed by PostgreSQL.
// Counter rows are append-only: they are never deleted, forming an audit
// trail of issuance order.
type SequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository returns a SequenceRepository that uses the given pool.
func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

// NextCounter atomically allocates the next counter value for the
// (scope, bucket) pair.
func (r *SequenceRepository) NextCounter(ctx context.Context, scope document.Scope, bucket string) (int64, error) {
	var counter int64
	err := r.pool.QueryRow(ctx, nextCounterSQL, uuid.New().String(), string(scope), bucket).Scan(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocating counter for %s/%s: %w", scope, bucket, err)
	}
	return counter, nil
}
