package services

import (
	"context"
	"errors"
	"sync"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// ScanPageSize is the page size used when reloading the canonical index.
const ScanPageSize = 500

// CanonicalIndex is an in-memory view of which codes and titles the record
// store already holds. Writes made through the store are not reflected until
// Reload is called.
type CanonicalIndex struct {
	store driven.RecordStore

	mu     sync.RWMutex
	codes  map[string]struct{}
	titles map[string]struct{}
}

// NewCanonicalIndex creates an empty index.
func NewCanonicalIndex(store driven.RecordStore) *CanonicalIndex {
	return &CanonicalIndex{
		store:  store,
		codes:  make(map[string]struct{}),
		titles: make(map[string]struct{}),
	}
}

// Reload rebuilds the index from a full store scan.
// On failure the index is left empty.
func (x *CanonicalIndex) Reload(ctx context.Context) error {
	codes := make(map[string]struct{})
	titles := make(map[string]struct{})

	err := x.store.Scan(ctx, ScanPageSize, func(page []domain.CanonicalRecord) error {
		for i := range page {
			if page[i].Code != "" {
				codes[page[i].Code] = struct{}{}
			}
			if page[i].TitleKey != "" {
				titles[page[i].TitleKey] = struct{}{}
			}
		}
		return nil
	})

	x.mu.Lock()
	defer x.mu.Unlock()
	if err != nil {
		x.codes = make(map[string]struct{})
		x.titles = make(map[string]struct{})
		logger.Warn("canonical index reload failed, duplicate detection disabled: %v", err)
		return errors.Join(domain.ErrCacheLoad, err)
	}

	x.codes = codes
	x.titles = titles
	logger.Debug("canonical index: %d codes, %d titles", len(codes), len(titles))
	return nil
}

// HasCode reports whether a record with the code is stored.
func (x *CanonicalIndex) HasCode(code string) bool {
	if code == "" {
		return false
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.codes[code]
	return ok
}

// HasTitle reports whether a record with the title's normalised key is stored.
func (x *CanonicalIndex) HasTitle(title string) bool {
	key := domain.TitleKey(title)
	if key == "" {
		return false
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.titles[key]
	return ok
}

// Knows reports whether the record is stored, by code first and by title
// only when the record has no code.
func (x *CanonicalIndex) Knows(code, title string) bool {
	if code != "" {
		return x.HasCode(code)
	}
	return x.HasTitle(title)
}
