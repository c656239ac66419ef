// Package domain defines the core types of knock's ingestion pipeline.
//
// This package is the innermost layer of the hexagonal architecture:
//
//   - SourceRecord: One normalised item yielded by a collector
//   - CanonicalRecord: The reconciled record for one cultural event
//   - Category: A level-two category under a MOVIE or PERFORMING_ARTS parent
//   - AuthoritativeEntry: A film catalog reference entry
//   - RunReport: Statistics of one ingestion pass
//
// # Import Rules
//
//   - Can Import: Standard library and golang.org/x/text
//   - Cannot Import: Any internal/ package
package domain
