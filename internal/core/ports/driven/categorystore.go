package driven

import (
	"context"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// CategoryStore persists level-two categories.
type CategoryStore interface {
	// ListByParent returns every category under a parent domain.
	ListByParent(ctx context.Context, parent string) ([]domain.Category, error)

	// Find returns the category matching name and parent exactly.
	// Returns domain.ErrNotFound if none exists.
	Find(ctx context.Context, name, parent string) (*domain.Category, error)

	// Create stores a new category.
	Create(ctx context.Context, category domain.Category) error
}
