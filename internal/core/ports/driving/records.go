package driving

import (
	"context"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// RecordService exposes the canonical store to operators.
type RecordService interface {
	// List returns canonical records, newest opening first.
	List(ctx context.Context, limit, offset int) ([]domain.CanonicalRecord, error)

	// Get returns one record by ID, code or title.
	Get(ctx context.Context, ref string) (*domain.CanonicalRecord, error)

	// Count returns the number of canonical records.
	Count(ctx context.Context) (int, error)

	// ImportAuthoritative loads film catalog reference entries.
	ImportAuthoritative(ctx context.Context, entries []domain.AuthoritativeEntry) (int, error)
}
