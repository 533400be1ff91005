package document

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// civilZone is the fixed civil timezone the minute bucket is computed in,
// so generated numbers stay visibly chronological for the business.
const civilZone = "Europe/Berlin"

// CounterStore allocates the next counter value for a (scope, bucket) pair.
//
// NextCounter must be a single indivisible insert-or-increment-and-return
// operation: if the row is absent it is created with counter=1, otherwise
// the counter is incremented, and either way the resulting value is
// returned. Two concurrent callers in the same bucket must never observe
// the same value. Read-then-write pairs and application-level locks do not
// satisfy this contract.
type CounterStore interface {
	NextCounter(ctx context.Context, scope Scope, bucket string) (int64, error)
}

// Sequencer issues scope-scoped, time-bucketed document numbers. The bucket
// is the current minute, bounding any single counter row to 60 seconds of
// traffic; counters are never reused or reset except by bucket rollover.
type Sequencer struct {
	store CounterStore
	now   func() time.Time
	loc   *time.Location
}

// NewSequencer creates a Sequencer over the given counter store.
func NewSequencer(store CounterStore) (*Sequencer, error) {
	loc, err := time.LoadLocation(civilZone)
	if err != nil {
		return nil, errors.Wrapf(err, "load location %s", civilZone)
	}
	return &Sequencer{store: store, now: time.Now, loc: loc}, nil
}

// Bucket renders an instant to the sequencer's minute-granularity bucket key.
func (s *Sequencer) Bucket(t time.Time) string {
	return t.In(s.loc).Format(bucketLayout)
}

// Next allocates the next counter value for the scope's current minute
// bucket and formats it into a document number.
func (s *Sequencer) Next(ctx context.Context, scope Scope) (string, error) {
	bucket := s.Bucket(s.now())

	counter, err := s.store.NextCounter(ctx, scope, bucket)
	if err != nil {
		return "", errors.Wrapf(err, "next counter for %s/%s", scope, bucket)
	}
	if counter < 1 {
		return "", errors.Errorf("invalid sequence counter %d for %s/%s", counter, scope, bucket)
	}

	return FormatNumber(scope, bucket, counter), nil
}
