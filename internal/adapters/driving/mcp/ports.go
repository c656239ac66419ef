package mcp

import (
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Records reads canonical records. Required.
	Records driving.RecordService

	// Ingestion runs passes on demand. Optional; the run_ingestion tool is
	// only registered when it is set.
	Ingestion driving.IngestionOrchestrator
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Records == nil {
		return ErrMissingRecordService
	}
	return nil
}
