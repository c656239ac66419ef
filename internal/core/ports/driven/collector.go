package driven

import (
	"context"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// SourceCollector fetches normalised records from one data source.
// Each source (film catalog, performing-arts catalog, venue feeds) implements
// this interface. Pages are expected newest first.
type SourceCollector interface {
	// Name returns the source identifier (e.g. "kofic").
	Name() string

	// Domain returns the level-one category of the source's records.
	Domain() domain.Domain

	// ReservationSlot returns the reservation link slot owned by the source,
	// or domain.NoSlot for catalog sources.
	ReservationSlot() int

	// PageSize returns the number of items requested per page.
	// A shorter page means the source has no more data. Zero disables
	// the short-page check.
	PageSize() int

	// FetchPage returns the page at cursor. The empty cursor is the first
	// page. Errors wrap domain.ErrSourceUnavailable.
	FetchPage(ctx context.Context, cursor string) (Page, error)

	// Detail enriches a listing record with its detail data.
	// Collectors without detail pages return the record unchanged.
	Detail(ctx context.Context, rec domain.SourceRecord) (domain.SourceRecord, error)

	// Close releases resources.
	Close() error
}

// Page is one page of a paginated source.
type Page struct {
	// Items are the page's records in source order.
	Items []domain.SourceRecord

	// Next is the cursor of the following page.
	Next string

	// Done is set when the collector knows there is no following page.
	Done bool
}

// CollectorFactory builds the enabled collectors from the current
// configuration, ordered by domain.SourceOrder.
type CollectorFactory interface {
	Build(ctx context.Context) ([]SourceCollector, error)
}
