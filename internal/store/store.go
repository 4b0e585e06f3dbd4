// Package store defines the record-store contracts the workflow core
// depends on. The PostgreSQL implementations live in
// internal/repositories; tests substitute in-memory fakes.
package store

import (
	"context"

	"returns-backend/internal/models"
)

// ReturnStore persists return records. UpdateFields has merge semantics:
// columns absent from the field map keep their stored value.
type ReturnStore interface {
	List(ctx context.Context) ([]*models.ReturnRecord, error)
	ListByStatus(ctx context.Context, status models.ReturnStatus, disposition models.Disposition) ([]*models.ReturnRecord, error)
	Get(ctx context.Context, id string) (*models.ReturnRecord, error)
	Insert(ctx context.Context, rec *models.ReturnRecord) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

// NCRStore persists NCR reports.
type NCRStore interface {
	List(ctx context.Context) ([]*models.NCRReport, error)
	Get(ctx context.Context, id string) (*models.NCRReport, error)
	Insert(ctx context.Context, rep *models.NCRReport) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// CounterStore owns the shared allocator state. Transact applies fn to
// the current counter (zero value when the row does not exist yet) as a
// single atomic read-modify-write; the implementation retries internally
// on concurrent conflicts and returns ErrAborted once its retry budget is
// spent. No two callers ever observe the same committed value.
type CounterStore interface {
	Transact(ctx context.Context, key string, fn func(models.Counter) models.Counter) (models.Counter, error)
}
