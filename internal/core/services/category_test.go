package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

func TestCategoryResolver_ResolveTwice_SameEntity(t *testing.T) {
	store := newStubCategoryStore()
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	first := resolver.Resolve(ctx, "Drama", "MOVIE")
	second := resolver.Resolve(ctx, "  drama ", "movie")

	assert.Equal(t, first, second)
	assert.Equal(t, "Drama", first.Name)
	assert.Equal(t, "MOVIE", first.Parent)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, 1, resolver.Len())
}

func TestCategoryResolver_Resolve_FindsStoredCategory(t *testing.T) {
	store := newStubCategoryStore()
	ctx := context.Background()
	require.NoError(t, store.CategoryStore.Create(ctx, domain.Category{ID: "cat-1", Name: "Musical", Parent: "PERFORMING_ARTS"}))

	resolver := NewCategoryResolver(store)
	got := resolver.Resolve(ctx, "Musical", "PERFORMING_ARTS")

	assert.Equal(t, "cat-1", got.ID)
	assert.Zero(t, store.createCalls)
}

func TestCategoryResolver_Resolve_ColdCacheMatchesNormalisedName(t *testing.T) {
	store := newStubCategoryStore()
	ctx := context.Background()
	require.NoError(t, store.CategoryStore.Create(ctx, domain.Category{ID: "stored-drama", Name: "Drama", Parent: "MOVIE"}))

	resolver := NewCategoryResolver(store)
	got := resolver.Resolve(ctx, " drama", "movie")

	assert.Equal(t, "stored-drama", got.ID)
	assert.Equal(t, "Drama", got.Name)
	assert.Zero(t, store.createCalls)
}

func TestCategoryResolver_Resolve_RejectedCreateReturnsStoredEntity(t *testing.T) {
	store := newStubCategoryStore()
	ctx := context.Background()
	store.beforeCreate = func() {
		_ = store.CategoryStore.Create(ctx, domain.Category{ID: "other-writer", Name: "Drama", Parent: "MOVIE"})
	}
	resolver := NewCategoryResolver(store)

	first := resolver.Resolve(ctx, "DRAMA", "MOVIE")
	second := resolver.Resolve(ctx, "drama", "MOVIE")

	assert.Equal(t, "other-writer", first.ID)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.createCalls)

	all, err := store.CategoryStore.ListByParent(ctx, "MOVIE")
	require.NoError(t, err)
	assert.Len(t, all, 1, "the resolved ID exists in the store")
}

func TestCategoryResolver_Preload_AvoidsLookups(t *testing.T) {
	store := newStubCategoryStore()
	ctx := context.Background()
	require.NoError(t, store.CategoryStore.Create(ctx, domain.Category{ID: "cat-1", Name: "Action", Parent: "MOVIE"}))
	require.NoError(t, store.CategoryStore.Create(ctx, domain.Category{ID: "cat-2", Name: "Opera", Parent: "PERFORMING_ARTS"}))

	resolver := NewCategoryResolver(store)
	require.NoError(t, resolver.Preload(ctx, "MOVIE"))
	assert.Equal(t, 1, resolver.Len())

	got := resolver.Resolve(ctx, "ACTION", "MOVIE")
	assert.Equal(t, "cat-1", got.ID)
	assert.Zero(t, store.finds)
}

func TestCategoryResolver_Preload_FailureDegradesToMiss(t *testing.T) {
	store := newStubCategoryStore()
	store.listErr = errors.New("connection refused")
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	err := resolver.Preload(ctx, "MOVIE")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCacheLoad)
	assert.Zero(t, resolver.Len())

	got := resolver.Resolve(ctx, "Drama", "MOVIE")
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 1, store.finds)
}

func TestCategoryResolver_Resolve_CreateFailureSwallowed(t *testing.T) {
	store := newStubCategoryStore()
	store.createErr = errors.New("write rejected")
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	first := resolver.Resolve(ctx, "Horror", "MOVIE")
	second := resolver.Resolve(ctx, "Horror", "MOVIE")

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.createCalls, "a failed create is not retried")
}

func TestCategoryResolver_Resolve_LookupFailureCreates(t *testing.T) {
	store := newStubCategoryStore()
	store.findErr = errors.New("timeout")
	resolver := NewCategoryResolver(store)

	got := resolver.Resolve(context.Background(), "Family", "MOVIE")

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 1, store.createCalls)
}

func TestCategoryResolver_Resolve_SameNameDifferentParent(t *testing.T) {
	store := newStubCategoryStore()
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	movie := resolver.Resolve(ctx, "Other", "MOVIE")
	stage := resolver.Resolve(ctx, "Other", "PERFORMING_ARTS")

	assert.NotEqual(t, movie.ID, stage.ID)
	assert.Equal(t, 2, store.createCalls)
}

func TestCategoryResolver_Resolve_Concurrent(t *testing.T) {
	store := newStubCategoryStore()
	resolver := NewCategoryResolver(store)
	ctx := context.Background()

	ids := make([]string, 16)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = resolver.Resolve(ctx, "Thriller", "MOVIE").ID
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, store.createCalls)
}
