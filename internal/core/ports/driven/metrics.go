package driven

import "github.com/keaunsolNa/knock-crawling/internal/core/domain"

// MetricsRecorder exports run statistics.
type MetricsRecorder interface {
	// ObserveSource records the statistics of one source's run.
	ObserveSource(report domain.SourceReport)

	// ObserveRun records the completion of a full pass.
	ObserveRun(report domain.RunReport)
}
