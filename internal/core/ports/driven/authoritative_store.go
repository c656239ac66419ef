package driven

import (
	"context"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// AuthoritativeStore holds the film catalog reference index.
type AuthoritativeStore interface {
	// ListAll returns every entry in load order.
	ListAll(ctx context.Context) ([]domain.AuthoritativeEntry, error)

	// Import stores or replaces entries by code.
	// Used by operator tooling only; the ingestion core never writes here.
	Import(ctx context.Context, entries []domain.AuthoritativeEntry) (int, error)
}
