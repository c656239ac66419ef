// Package connectors builds the source collectors for an ingestion pass.
// Each collector knows how to fetch records from one source (the film and
// performing-arts catalogs, the venue feeds).
//
// The Registry reads the current configuration on every Build, so enabling
// a source or rotating an API key takes effect on the next pass.
package connectors
