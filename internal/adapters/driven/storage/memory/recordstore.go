package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
// It enforces the same uniqueness rules as the SQLite store: one record per
// code, and one codeless record per title key.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.CanonicalRecord
	order   []string
	now     func() time.Time
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.CanonicalRecord),
		now:     time.Now,
	}
}

// FindByCode returns the record with the exact code.
func (s *RecordStore) FindByCode(_ context.Context, code string) (*domain.CanonicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if code == "" {
		return nil, domain.ErrNotFound
	}
	for _, id := range s.order {
		if rec := s.records[id]; rec.Code == code {
			return cloneRecord(rec), nil
		}
	}
	return nil, domain.ErrNotFound
}

// FindByTitleKey returns the earliest record with the exact title key.
func (s *RecordStore) FindByTitleKey(_ context.Context, titleKey string) (*domain.CanonicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if titleKey == "" {
		return nil, domain.ErrNotFound
	}
	for _, id := range s.order {
		if rec := s.records[id]; rec.TitleKey == titleKey {
			return cloneRecord(rec), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(_ context.Context, id string) (*domain.CanonicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Scan visits every record in ID order.
func (s *RecordStore) Scan(ctx context.Context, pageSize int, fn func([]domain.CanonicalRecord) error) error {
	if pageSize <= 0 {
		return fmt.Errorf("%w: page size %d", domain.ErrInvalidInput, pageSize)
	}

	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	all := make([]domain.CanonicalRecord, 0, len(ids))
	for _, id := range ids {
		all = append(all, *cloneRecord(s.records[id]))
	}
	s.mu.RUnlock()

	for start := 0; start < len(all); start += pageSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+pageSize, len(all))
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Bulk applies the operations one by one.
func (s *RecordStore) Bulk(_ context.Context, ops []domain.WriteOp) ([]domain.OpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]domain.OpResult, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case domain.OpCreate:
			results[i] = s.create(op.Record)
		case domain.OpUpdate:
			results[i] = s.update(op.ID, op.Patch)
		default:
			results[i] = domain.OpResult{Err: fmt.Errorf("%w: operation %q", domain.ErrInvalidInput, op.Kind)}
		}
	}
	return results, nil
}

func (s *RecordStore) create(rec *domain.CanonicalRecord) domain.OpResult {
	if rec == nil || rec.ID == "" {
		return domain.OpResult{Err: fmt.Errorf("%w: record without ID", domain.ErrStoreWrite)}
	}
	if _, exists := s.records[rec.ID]; exists {
		return domain.OpResult{ID: rec.ID, Err: fmt.Errorf("%w: duplicate id %s", domain.ErrStoreWrite, rec.ID)}
	}
	for _, id := range s.order {
		other := s.records[id]
		if rec.Code != "" && other.Code == rec.Code {
			return domain.OpResult{ID: rec.ID, Err: fmt.Errorf("%w: duplicate code %s", domain.ErrStoreWrite, rec.Code)}
		}
		if rec.Code == "" && other.Code == "" && other.TitleKey == rec.TitleKey {
			return domain.OpResult{ID: rec.ID, Err: fmt.Errorf("%w: duplicate title %q", domain.ErrStoreWrite, rec.TitleKey)}
		}
	}

	stored := *cloneRecord(*rec)
	now := s.now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.records[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return domain.OpResult{ID: stored.ID}
}

func (s *RecordStore) update(id string, patch domain.RecordPatch) domain.OpResult {
	rec, ok := s.records[id]
	if !ok {
		return domain.OpResult{ID: id, Err: fmt.Errorf("update %s: %w", id, domain.ErrNotFound)}
	}
	patch.Apply(&rec)
	rec.UpdatedAt = s.now().UTC()
	s.records[id] = rec
	return domain.OpResult{ID: id}
}

// List returns records ordered by opening time, newest first.
func (s *RecordStore) List(_ context.Context, limit, offset int) ([]domain.CanonicalRecord, error) {
	s.mu.RLock()
	all := make([]domain.CanonicalRecord, 0, len(s.records))
	for _, id := range s.order {
		all = append(all, *cloneRecord(s.records[id]))
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].OpeningTime != all[j].OpeningTime {
			return all[i].OpeningTime > all[j].OpeningTime
		}
		return all[i].Title < all[j].Title
	})

	if offset >= len(all) {
		return []domain.CanonicalRecord{}, nil
	}
	end := len(all)
	if limit > 0 {
		end = min(offset+limit, len(all))
	}
	return all[offset:end], nil
}

// Count returns the number of records.
func (s *RecordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// cloneRecord copies a record so callers never share slices with the store.
func cloneRecord(rec domain.CanonicalRecord) *domain.CanonicalRecord {
	rec.Directors = slices.Clone(rec.Directors)
	rec.Cast = slices.Clone(rec.Cast)
	rec.Companies = slices.Clone(rec.Companies)
	rec.ReservationLinks = slices.Clone(rec.ReservationLinks)
	rec.Categories = slices.Clone(rec.Categories)
	return &rec
}
