//go:build integration

package integration

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umzugwerk/booking-api/internal/domain/document"
	"github.com/umzugwerk/booking-api/internal/repository"
)

func TestSequenceRepository_NextCounter_Sequential(t *testing.T) {
	repo := repository.NewSequenceRepository(pool)
	ctx := context.Background()

	first, err := repo.NextCounter(ctx, document.ScopeOrder, "202601151005")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := repo.NextCounter(ctx, document.ScopeOrder, "202601151005")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	// Other scopes and buckets count independently.
	other, err := repo.NextCounter(ctx, document.ScopeContract, "202601151005")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	rolled, err := repo.NextCounter(ctx, document.ScopeOrder, "202601151006")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rolled)
}

func TestSequenceRepository_NextCounter_ConcurrentDense(t *testing.T) {
	repo := repository.NewSequenceRepository(pool)
	ctx := context.Background()

	const workers = 100
	bucket := "202601151007"

	var wg sync.WaitGroup
	results := make([]int64, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = repo.NextCounter(ctx, document.ScopeOrder, bucket)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Concurrent allocations in one bucket form the dense sequence 1..N
	// with no duplicates and no gaps.
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, got := range results {
		assert.Equal(t, int64(i+1), got)
	}
}

func TestSequencer_Next_EndToEnd(t *testing.T) {
	seq, err := document.NewSequencer(repository.NewSequenceRepository(pool))
	require.NoError(t, err)

	orderNo, err := seq.Next(context.Background(), document.ScopeOrder)
	require.NoError(t, err)
	assert.Regexp(t, `^AUF-\d{8}-\d{4}-\d{3,}$`, orderNo)

	offerNo, err := document.DeriveOfferNo(orderNo)
	require.NoError(t, err)
	assert.Equal(t, "ANG-"+orderNo[4:], offerNo)
}
