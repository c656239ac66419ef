package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// IdentityMatcher resolves a ticketing-site record against the film catalog
// index by exact title and director overlap.
type IdentityMatcher struct {
	store  driven.AuthoritativeStore
	policy domain.IdentityPolicy

	mu      sync.RWMutex
	byTitle map[string][]domain.AuthoritativeEntry
	byCode  map[string]struct{}
}

// NewIdentityMatcher creates a matcher with an empty cache.
// An unknown policy falls back to first-match.
func NewIdentityMatcher(store driven.AuthoritativeStore, policy domain.IdentityPolicy) *IdentityMatcher {
	if !policy.IsValid() {
		policy = domain.IdentityFirstMatch
	}
	return &IdentityMatcher{
		store:   store,
		policy:  policy,
		byTitle: make(map[string][]domain.AuthoritativeEntry),
		byCode:  make(map[string]struct{}),
	}
}

// Load replaces the cache with the full catalog index.
// On failure the cache is emptied, so every match misses.
func (m *IdentityMatcher) Load(ctx context.Context) error {
	entries, err := m.store.ListAll(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.byTitle = make(map[string][]domain.AuthoritativeEntry)
	m.byCode = make(map[string]struct{})

	if err != nil {
		logger.Warn("authoritative index load failed, matching disabled: %v", err)
		return errors.Join(domain.ErrCacheLoad, err)
	}

	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		m.byTitle[title] = append(m.byTitle[title], e)
		if e.Code != "" {
			m.byCode[e.Code] = struct{}{}
		}
	}
	logger.Debug("loaded %d authoritative entries", len(entries))
	return nil
}

// Match returns the catalog entry for title whose directors overlap the
// given contributors. Title equality is exact after trimming surrounding
// whitespace. Both title and contributors are required.
func (m *IdentityMatcher) Match(title string, contributors []string) (domain.AuthoritativeEntry, bool) {
	title = strings.TrimSpace(title)
	wanted := toSet(contributors)
	if title == "" || len(wanted) == 0 {
		return domain.AuthoritativeEntry{}, false
	}

	m.mu.RLock()
	candidates := m.byTitle[title]
	m.mu.RUnlock()

	best := -1
	bestOverlap := 0
	for i := range candidates {
		overlap := countOverlap(candidates[i].Directors, wanted)
		if overlap == 0 {
			continue
		}
		if m.policy == domain.IdentityFirstMatch {
			return candidates[i], true
		}
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best < 0 {
		return domain.AuthoritativeEntry{}, false
	}
	return candidates[best], true
}

// HasCode reports whether the catalog index knows a code.
func (m *IdentityMatcher) HasCode(code string) bool {
	if code == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byCode[code]
	return ok
}

// Len returns the number of cached entries.
func (m *IdentityMatcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, entries := range m.byTitle {
		n += len(entries)
	}
	return n
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func countOverlap(values []string, set map[string]struct{}) int {
	n := 0
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			n++
		}
	}
	return n
}
