// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewRecords is the paged records list.
	ViewRecords ViewType = iota
	// ViewRecord shows one record.
	ViewRecord
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewRecords:
		return "records"
	case ViewRecord:
		return "record"
	default:
		return "unknown"
	}
}

// RecordsLoaded carries one page of records.
type RecordsLoaded struct {
	Records []domain.CanonicalRecord
	Offset  int
	Total   int
	Err     error
}

// RecordSelected opens a record in the detail view.
type RecordSelected struct {
	Record domain.CanonicalRecord
}

// RunStarted is sent when an ingestion pass begins.
type RunStarted struct{}

// RunCompleted carries the result of an ingestion pass.
type RunCompleted struct {
	Report *domain.RunReport
	Err    error
}

// ErrorOccurred is sent when an error happens.
type ErrorOccurred struct {
	Err error
}
