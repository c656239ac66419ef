package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

// Ensure CategoryStore implements the interface.
var _ driven.CategoryStore = (*CategoryStore)(nil)

// CategoryStore is an in-memory implementation of driven.CategoryStore.
type CategoryStore struct {
	mu         sync.RWMutex
	categories []domain.Category
	creates    int
}

// NewCategoryStore creates a new in-memory category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{}
}

// ListByParent returns every category under a parent.
func (s *CategoryStore) ListByParent(_ context.Context, parent string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Category
	for _, c := range s.categories {
		if domain.CategoryKey(c.Parent) == domain.CategoryKey(parent) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Find matches name and parent after normalisation with domain.CategoryKey.
func (s *CategoryStore) Find(_ context.Context, name, parent string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(name, parent); i >= 0 {
		found := s.categories[i]
		return &found, nil
	}
	return nil, domain.ErrNotFound
}

func (s *CategoryStore) indexOf(name, parent string) int {
	nameKey, parentKey := domain.CategoryKey(name), domain.CategoryKey(parent)
	for i, c := range s.categories {
		if domain.CategoryKey(c.Name) == nameKey && domain.CategoryKey(c.Parent) == parentKey {
			return i
		}
	}
	return -1
}

// Create stores a new category. IDs and normalised (name, parent) pairs
// are unique.
func (s *CategoryStore) Create(_ context.Context, category domain.Category) error {
	if category.ID == "" {
		return fmt.Errorf("%w: category without ID", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == category.ID {
			return fmt.Errorf("%w: duplicate category id %s", domain.ErrStoreWrite, category.ID)
		}
	}
	if s.indexOf(category.Name, category.Parent) >= 0 {
		return fmt.Errorf("%w: duplicate category %s/%s", domain.ErrStoreWrite, category.Parent, category.Name)
	}
	s.categories = append(s.categories, category)
	s.creates++
	return nil
}

// Creates returns how many categories have been created.
func (s *CategoryStore) Creates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creates
}
