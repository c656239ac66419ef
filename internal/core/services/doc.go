// Package services holds the ingestion core: category resolution, identity
// matching, the crawl controller, record building, merge-upsert and the
// orchestrator that sequences them, plus the record, settings and scheduler
// services used by the command line.
//
// Services depend only on the ports in internal/core/ports.
package services
