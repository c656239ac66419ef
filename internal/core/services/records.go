package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService is the read side of the canonical store plus the operator
// import of the film catalog index.
type RecordService struct {
	records       driven.RecordStore
	authoritative driven.AuthoritativeStore
}

// NewRecordService creates a new record service.
func NewRecordService(records driven.RecordStore, authoritative driven.AuthoritativeStore) *RecordService {
	return &RecordService{records: records, authoritative: authoritative}
}

// List returns canonical records, newest opening first.
func (s *RecordService) List(ctx context.Context, limit, offset int) ([]domain.CanonicalRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidInput)
	}
	return s.records.List(ctx, limit, offset)
}

// Get resolves ref as a record ID, then an authoritative code, then a title.
func (s *RecordService) Get(ctx context.Context, ref string) (*domain.CanonicalRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty record reference", domain.ErrInvalidInput)
	}

	lookups := []func(context.Context, string) (*domain.CanonicalRecord, error){
		s.records.Get,
		s.records.FindByCode,
		func(ctx context.Context, title string) (*domain.CanonicalRecord, error) {
			return s.records.FindByTitleKey(ctx, domain.TitleKey(title))
		},
	}
	for _, lookup := range lookups {
		rec, err := lookup(ctx, ref)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("record %q: %w", ref, domain.ErrNotFound)
}

// Count returns the number of canonical records.
func (s *RecordService) Count(ctx context.Context) (int, error) {
	return s.records.Count(ctx)
}

// ImportAuthoritative validates and stores film catalog entries.
// Entries without a code or title are rejected as a whole.
func (s *RecordService) ImportAuthoritative(ctx context.Context, entries []domain.AuthoritativeEntry) (int, error) {
	for i := range entries {
		entries[i].Code = strings.TrimSpace(entries[i].Code)
		entries[i].Title = strings.TrimSpace(entries[i].Title)
		if entries[i].Code == "" || entries[i].Title == "" {
			return 0, fmt.Errorf("%w: entry %d needs a code and a title", domain.ErrInvalidInput, i)
		}
		entries[i].Directors = domain.CleanList(entries[i].Directors)
		entries[i].Cast = domain.CleanList(entries[i].Cast)
		entries[i].Companies = domain.CleanList(entries[i].Companies)
		entries[i].Genres = domain.CleanList(entries[i].Genres)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	return s.authoritative.Import(ctx, entries)
}
