package driving

import "context"

// Scheduler runs ingestion passes on the configured interval.
type Scheduler interface {
	// Start runs due tasks until ctx is done.
	Start(ctx context.Context) error

	// Stop waits for a pass in flight to finish.
	Stop() error
}
