package document

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCounterStore is an in-memory CounterStore honoring the atomic
// insert-or-increment contract under a mutex.
type memCounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{counters: make(map[string]int64)}
}

func (m *memCounterStore) NextCounter(_ context.Context, scope Scope, bucket string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(scope) + "/" + bucket
	m.counters[key]++
	return m.counters[key], nil
}

func newTestSequencer(t *testing.T, store CounterStore, now time.Time) *Sequencer {
	t.Helper()
	seq, err := NewSequencer(store)
	require.NoError(t, err)
	seq.now = func() time.Time { return now }
	return seq
}

func TestSequencer_Next(t *testing.T) {
	store := newMemCounterStore()
	// 09:05 UTC is 10:05 in Berlin (CET, winter).
	now := time.Date(2026, 1, 15, 9, 5, 30, 0, time.UTC)
	seq := newTestSequencer(t, store, now)

	first, err := seq.Next(context.Background(), ScopeOrder)
	require.NoError(t, err)
	assert.Equal(t, "AUF-20260115-1005-001", first)

	second, err := seq.Next(context.Background(), ScopeOrder)
	require.NoError(t, err)
	assert.Equal(t, "AUF-20260115-1005-002", second)
}

func TestSequencer_ScopesCountIndependently(t *testing.T) {
	store := newMemCounterStore()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	seq := newTestSequencer(t, store, now)

	orderNo, err := seq.Next(context.Background(), ScopeOrder)
	require.NoError(t, err)
	contractNo, err := seq.Next(context.Background(), ScopeContract)
	require.NoError(t, err)

	// Both scopes start at 001 in the same bucket.
	assert.Equal(t, "AUF-20260701-1400-001", orderNo)
	assert.Equal(t, "VER-20260701-1400-001", contractNo)
}

func TestSequencer_BucketRolloverResetsCounter(t *testing.T) {
	store := newMemCounterStore()
	now := time.Date(2026, 7, 1, 12, 0, 59, 0, time.UTC)
	seq := newTestSequencer(t, store, now)

	first, err := seq.Next(context.Background(), ScopeOrder)
	require.NoError(t, err)
	assert.Equal(t, "AUF-20260701-1400-001", first)

	seq.now = func() time.Time { return now.Add(time.Second) }
	next, err := seq.Next(context.Background(), ScopeOrder)
	require.NoError(t, err)
	assert.Equal(t, "AUF-20260701-1401-001", next)
}

func TestSequencer_Bucket_UsesCivilTime(t *testing.T) {
	store := newMemCounterStore()
	seq := newTestSequencer(t, store, time.Now())

	// 22:30 UTC on June 30 is already July 1 in Berlin (CEST, +2).
	bucket := seq.Bucket(time.Date(2026, 6, 30, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, "202607010030", bucket)
}

func TestSequencer_Next_StoreError(t *testing.T) {
	store := newMemCounterStore()
	store.err = context.DeadlineExceeded
	seq := newTestSequencer(t, store, time.Now())

	_, err := seq.Next(context.Background(), ScopeOrder)
	require.Error(t, err)
}

func TestSequencer_Next_ConcurrentAllocationsAreUnique(t *testing.T) {
	store := newMemCounterStore()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	seq := newTestSequencer(t, store, now)

	const goroutines = 100

	var wg sync.WaitGroup
	results := make([]string, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			no, err := seq.Next(context.Background(), ScopeOrder)
			assert.NoError(t, err)
			results[i] = no
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, goroutines)
	for _, no := range results {
		_, dup := seen[no]
		assert.False(t, dup, "duplicate number %s", no)
		seen[no] = struct{}{}
	}
	assert.Len(t, seen, goroutines)
}
