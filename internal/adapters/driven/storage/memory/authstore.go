package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

// Ensure AuthoritativeStore implements the interface.
var _ driven.AuthoritativeStore = (*AuthoritativeStore)(nil)

// AuthoritativeStore is an in-memory film catalog index.
type AuthoritativeStore struct {
	mu      sync.RWMutex
	entries []domain.AuthoritativeEntry
}

// NewAuthoritativeStore creates a store holding the given entries in order.
func NewAuthoritativeStore(entries ...domain.AuthoritativeEntry) *AuthoritativeStore {
	return &AuthoritativeStore{entries: slices.Clone(entries)}
}

// ListAll returns every entry in load order.
func (s *AuthoritativeStore) ListAll(_ context.Context) ([]domain.AuthoritativeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries), nil
}

// Import stores or replaces entries by code.
func (s *AuthoritativeStore) Import(_ context.Context, entries []domain.AuthoritativeEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		idx := slices.IndexFunc(s.entries, func(x domain.AuthoritativeEntry) bool { return x.Code == e.Code })
		if idx >= 0 {
			s.entries[idx] = e
			continue
		}
		s.entries = append(s.entries, e)
	}
	return len(entries), nil
}
