package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/models"
	"returns-backend/internal/store"
)

// counterTxRetries bounds the internal retry loop on serialization
// conflicts. FOR UPDATE row locking makes conflicts rare; the budget
// exists for deadlock-victim retries.
const counterTxRetries = 5

type CounterRepository struct {
	DB *pgxpool.Pool
}

func NewCounterRepository(db *pgxpool.Pool) *CounterRepository {
	return &CounterRepository{DB: db}
}

// Transact applies fn to the named counter as one atomic
// read-modify-write. The row is locked for the duration of the
// transaction, so no two callers ever commit from the same starting
// value. Retries internally on serialization failures; returns
// store.ErrAborted once the budget is spent.
func (r *CounterRepository) Transact(ctx context.Context, key string, fn func(models.Counter) models.Counter) (models.Counter, error) {
	var committed models.Counter

	var lastErr error
	for attempt := 0; attempt < counterTxRetries; attempt++ {
		committed, lastErr = r.transactOnce(ctx, key, fn)
		if lastErr == nil {
			return committed, nil
		}
		if !isSerializationFailure(lastErr) {
			return models.Counter{}, wrapErr("counter transact", lastErr)
		}
	}
	return models.Counter{}, wrapErr("counter transact", lastErr)
}

func (r *CounterRepository) transactOnce(ctx context.Context, key string, fn func(models.Counter) models.Counter) (models.Counter, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return models.Counter{}, err
	}
	defer tx.Rollback(ctx)

	// SELECT FOR UPDATE on a missing row locks nothing, which would let
	// two first-ever allocations both read the zero value and commit the
	// same number. Materialize the row first so every caller contends on
	// the same row lock.
	_, err = tx.Exec(ctx,
		`INSERT INTO counters (name, year, last_number) VALUES ($1, 0, 0) ON CONFLICT (name) DO NOTHING`,
		key,
	)
	if err != nil {
		return models.Counter{}, err
	}

	current := models.Counter{Name: key}
	err = tx.QueryRow(ctx,
		`SELECT name, year, last_number FROM counters WHERE name = $1 FOR UPDATE`,
		key,
	).Scan(&current.Name, &current.Year, &current.LastNumber)
	if err != nil {
		return models.Counter{}, err
	}

	next := fn(current)
	next.Name = key

	_, err = tx.Exec(ctx, `
		UPDATE counters
		SET year = $2, last_number = $3, updated_at = CURRENT_TIMESTAMP
		WHERE name = $1
	`, next.Name, next.Year, next.LastNumber)
	if err != nil {
		return models.Counter{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Counter{}, err
	}
	return next, nil
}

var _ store.CounterStore = (*CounterRepository)(nil)
