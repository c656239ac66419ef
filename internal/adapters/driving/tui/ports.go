// Package tui provides an interactive terminal browser for canonical records.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Records reads canonical records. Required.
	Records driving.RecordService

	// Ingestion runs passes from the records view. Optional.
	Ingestion driving.IngestionOrchestrator
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Records == nil {
		return ErrMissingRecordService
	}
	return nil
}
