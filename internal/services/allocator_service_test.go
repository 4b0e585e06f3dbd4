package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
)

func pinnedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAllocateSequence(t *testing.T) {
	counters := newMemCounterStore()
	svc := NewAllocatorService(counters)
	svc.now = pinnedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	first, err := svc.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NCR-2026-0001", first.String())
	assert.False(t, first.Provisional)

	second, err := svc.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NCR-2026-0002", second.String())
}

func TestAllocateConcurrentNoDuplicates(t *testing.T) {
	counters := newMemCounterStore()
	svc := NewAllocatorService(counters)
	svc.now = pinnedClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))

	const n = 50
	seqs := make(chan int, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.Allocate(context.Background())
			if err != nil {
				errs <- err
				return
			}
			seqs <- num.Seq
		}()
	}
	wg.Wait()
	close(seqs)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := map[int]bool{}
	for seq := range seqs {
		assert.False(t, seen[seq], "sequence %d allocated twice", seq)
		seen[seq] = true
	}
	// Gap-free: exactly 1..n allocated.
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "sequence %d missing", i)
	}
}

func TestAllocateYearRollover(t *testing.T) {
	counters := newMemCounterStore()
	counters.counters[models.NCRCounterKey] = models.Counter{
		Name:       models.NCRCounterKey,
		Year:       2025,
		LastNumber: 847,
	}

	svc := NewAllocatorService(counters)
	svc.now = pinnedClock(time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC))

	num, err := svc.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2026, num.Year)
	assert.Equal(t, 1, num.Seq, "new year restarts the sequence")
	assert.Equal(t, "NCR-2026-0001", num.String())
}

func TestAllocateWidensPast9999(t *testing.T) {
	counters := newMemCounterStore()
	counters.counters[models.NCRCounterKey] = models.Counter{
		Name:       models.NCRCounterKey,
		Year:       2026,
		LastNumber: 9999,
	}

	svc := NewAllocatorService(counters)
	svc.now = pinnedClock(time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC))

	num, err := svc.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NCR-2026-10000", num.String())
}

func TestAllocateAbortPassesThrough(t *testing.T) {
	counters := newMemCounterStore()
	counters.failWith = store.ErrAborted

	svc := NewAllocatorService(counters)
	_, err := svc.Allocate(context.Background())
	require.ErrorIs(t, err, store.ErrAborted)
}

func TestProvisionalNumberIsMarked(t *testing.T) {
	svc := NewAllocatorService(newMemCounterStore())
	svc.now = pinnedClock(time.Date(2026, 5, 5, 10, 0, 0, 0, time.UTC))

	num := svc.Provisional()
	assert.True(t, num.Provisional)
	assert.Contains(t, num.String(), "ERR-NCR-2026-")
}
