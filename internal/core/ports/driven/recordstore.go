package driven

import (
	"context"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// RecordStore persists canonical records.
// Backed by SQLite; every single-document write is atomic, batches are not.
type RecordStore interface {
	// FindByCode returns the record with the exact authoritative code.
	// Returns domain.ErrNotFound if none exists.
	FindByCode(ctx context.Context, code string) (*domain.CanonicalRecord, error)

	// FindByTitleKey returns the record with the exact normalised title.
	// Returns domain.ErrNotFound if none exists.
	FindByTitleKey(ctx context.Context, titleKey string) (*domain.CanonicalRecord, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*domain.CanonicalRecord, error)

	// Scan visits every record in stable ID order, pageSize at a time.
	// Returning an error from fn stops the scan and returns that error.
	Scan(ctx context.Context, pageSize int, fn func([]domain.CanonicalRecord) error) error

	// Bulk applies the operations and returns one result per operation in
	// the same order. A failed operation never aborts its siblings.
	// The error return is reserved for failures of the whole call.
	Bulk(ctx context.Context, ops []domain.WriteOp) ([]domain.OpResult, error)

	// List returns records ordered by opening time, newest first.
	List(ctx context.Context, limit, offset int) ([]domain.CanonicalRecord, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)
}
