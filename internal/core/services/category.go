package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// categoryKey identifies a category in the cache.
type categoryKey struct {
	name   string
	parent string
}

func newCategoryKey(name, parent string) categoryKey {
	return categoryKey{name: domain.CategoryKey(name), parent: domain.CategoryKey(parent)}
}

// CategoryResolver is a get-or-create cache over level-two categories.
// One resolver lives for one ingestion run; the cache only grows.
type CategoryResolver struct {
	store driven.CategoryStore

	mu    sync.Mutex
	cache map[categoryKey]domain.Category
}

// NewCategoryResolver creates a resolver with an empty cache.
func NewCategoryResolver(store driven.CategoryStore) *CategoryResolver {
	return &CategoryResolver{
		store: store,
		cache: make(map[categoryKey]domain.Category),
	}
}

// Preload loads every category under parent in one query.
// On failure the cache is left as it was and lookups fall through to the
// store, so the error is informational.
func (r *CategoryResolver) Preload(ctx context.Context, parent string) error {
	categories, err := r.store.ListByParent(ctx, parent)
	if err != nil {
		logger.Warn("category preload for %s failed: %v", parent, err)
		return errors.Join(domain.ErrCacheLoad, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range categories {
		r.cache[newCategoryKey(c.Name, c.Parent)] = c
	}
	logger.Debug("loaded %d categories under %s", len(categories), parent)
	return nil
}

// Resolve returns the category for (name, parent), creating it on first use.
// Names are matched trimmed and upper-cased; the stored entity keeps the
// casing of its first sighting. When the create is rejected the stored
// entity is looked up again; only if that also misses is the unsaved
// entity returned.
func (r *CategoryResolver) Resolve(ctx context.Context, name, parent string) domain.Category {
	key := newCategoryKey(name, parent)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache[key]; ok {
		return c
	}

	name = strings.TrimSpace(name)
	parent = strings.TrimSpace(parent)

	found, err := r.store.Find(ctx, name, parent)
	switch {
	case err == nil && found != nil:
		r.cache[key] = *found
		return *found
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		logger.Warn("category lookup %s/%s failed, creating: %v", parent, name, err)
	}

	created := domain.Category{
		ID:     uuid.New().String(),
		Name:   name,
		Parent: parent,
	}
	// Cached before the store confirms so the same run never creates twice.
	r.cache[key] = created

	if err := r.store.Create(ctx, created); err != nil {
		// Another writer may have stored it since the lookup.
		if stored, findErr := r.store.Find(ctx, name, parent); findErr == nil && stored != nil {
			r.cache[key] = *stored
			return *stored
		}
		logger.Warn("category create %s/%s failed: %v", parent, name, err)
		return created
	}
	logger.Info("created category %s under %s", name, parent)
	return created
}

// Len returns the number of cached categories.
func (r *CategoryResolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
