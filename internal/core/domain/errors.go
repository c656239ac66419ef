package domain

import "errors"

// Domain errors represent reconciliation and ingestion failures.
// These are distinct from infrastructure errors, which adapters wrap with %w.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrSourceUnavailable indicates a collector or upstream API call failed.
	// The source's run is aborted; sibling sources continue.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedItem indicates a single record could not be normalised.
	// The item is skipped; the rest of the batch proceeds.
	ErrMalformedItem = errors.New("malformed item")

	// ErrStoreWrite indicates a per-item failure reported by a batched write.
	ErrStoreWrite = errors.New("store write failed")

	// ErrCacheLoad indicates a bulk preload failed.
	// Callers degrade to an empty cache instead of failing.
	ErrCacheLoad = errors.New("cache load failed")

	// ErrPageLimit indicates a crawl hit the page-count ceiling.
	ErrPageLimit = errors.New("page limit reached")

	// ErrRunInProgress indicates another process holds the ingestion lock.
	ErrRunInProgress = errors.New("ingestion run in progress")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrCollectorClosed indicates the collector has been closed.
	ErrCollectorClosed = errors.New("collector closed")
)
