package driving

import (
	"context"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// IngestionOrchestrator runs full ingestion passes.
type IngestionOrchestrator interface {
	// RunOnce runs one full ingestion pass over every configured source.
	// Per-source failures are recorded in the report, not returned.
	RunOnce(ctx context.Context) (*domain.RunReport, error)

	// Status returns the progress of the current run.
	Status(ctx context.Context) (*RunStatus, error)
}

// RunStatus represents the current state of an ingestion run.
type RunStatus struct {
	// Running indicates if a run is in progress.
	Running bool

	// CurrentSource is the source being processed.
	CurrentSource string

	// SourcesDone is the number of sources finished in this run.
	SourcesDone int

	// RecordsProduced counts records produced so far.
	RecordsProduced int
}
