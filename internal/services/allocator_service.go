package services

import (
	"context"
	"fmt"
	"time"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
	"returns-backend/internal/timeutil"
)

// DocumentNumber is an allocated NCR document number. Provisional numbers
// are display-only placeholders handed out when allocation fails; they
// carry an ERR prefix and must never be persisted as authoritative.
type DocumentNumber struct {
	Year        int  `json:"year"`
	Seq         int  `json:"seq"`
	Provisional bool `json:"provisional,omitempty"`
}

// String renders the canonical NCR-{year}-{seq} form. The sequence is
// zero-padded to four digits and widens naturally past 9999.
func (n DocumentNumber) String() string {
	s := fmt.Sprintf("NCR-%d-%04d", n.Year, n.Seq)
	if n.Provisional {
		return "ERR-" + s
	}
	return s
}

// AllocatorService hands out gap-free, year-scoped NCR numbers. All
// instances share one counter row, so numbers are unique across the
// fleet; the store's transact contract guarantees no two callers commit
// from the same value.
type AllocatorService struct {
	Counters store.CounterStore

	now func() time.Time
}

func NewAllocatorService(counters store.CounterStore) *AllocatorService {
	return &AllocatorService{
		Counters: counters,
		now:      timeutil.Now,
	}
}

// Allocate reserves the next number in one atomic transact. A counter
// from an earlier year (or a missing row) resets to seq 1 for the
// current ICT year; otherwise the sequence increments. On conflict
// exhaustion the store's aborted error passes through for the caller to
// classify.
func (s *AllocatorService) Allocate(ctx context.Context) (DocumentNumber, error) {
	year := s.now().Year()

	committed, err := s.Counters.Transact(ctx, models.NCRCounterKey, func(c models.Counter) models.Counter {
		if c.Year != year {
			return models.Counter{Year: year, LastNumber: 1}
		}
		c.LastNumber++
		return c
	})
	if err != nil {
		return DocumentNumber{}, fmt.Errorf("allocate ncr number: %w", err)
	}

	return DocumentNumber{Year: committed.Year, Seq: committed.LastNumber}, nil
}

// Provisional builds a clock-derived placeholder for display after a
// failed allocation. The caller surfaces it alongside the error; it is
// never written to the store.
func (s *AllocatorService) Provisional() DocumentNumber {
	now := s.now()
	return DocumentNumber{
		Year:        now.Year(),
		Seq:         int(now.Unix() % 100000),
		Provisional: true,
	}
}
