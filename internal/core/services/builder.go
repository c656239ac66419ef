package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// RecordBuilder turns collector output into write candidates.
// The matcher and index are optional; without them no identity is borrowed
// and every candidate is treated as new.
type RecordBuilder struct {
	categories *CategoryResolver
	matcher    *IdentityMatcher
	index      *CanonicalIndex
	now        func() time.Time
}

// NewRecordBuilder creates a builder over the run's caches.
func NewRecordBuilder(categories *CategoryResolver, matcher *IdentityMatcher, index *CanonicalIndex) *RecordBuilder {
	return &RecordBuilder{
		categories: categories,
		matcher:    matcher,
		index:      index,
		now:        time.Now,
	}
}

// Build converts a source record into a candidate. slot is the reservation
// slot owned by the source, or domain.NoSlot.
func (b *RecordBuilder) Build(ctx context.Context, src domain.SourceRecord, slot int) (domain.Candidate, error) {
	title := strings.TrimSpace(src.Title)
	if title == "" {
		return domain.Candidate{}, fmt.Errorf("%s item without title: %w", src.SourceID, domain.ErrMalformedItem)
	}
	if !src.Domain.IsValid() {
		return domain.Candidate{}, fmt.Errorf("%s item %q has domain %q: %w", src.SourceID, title, src.Domain, domain.ErrMalformedItem)
	}

	now := b.now().UTC()
	rec := domain.CanonicalRecord{
		ID:               uuid.New().String(),
		Code:             strings.TrimSpace(src.Code),
		Title:            title,
		OpeningTime:      src.OpeningTime,
		ClosingTime:      src.ClosingTime,
		Directors:        domain.CleanList(src.Directors),
		Cast:             domain.CleanList(src.Cast),
		Companies:        domain.CleanList(src.Companies),
		ReservationLinks: domain.NewReservationLinks(slot, src.ReservationURL),
		Poster:           strings.TrimSpace(src.Poster),
		Plot:             strings.TrimSpace(src.Plot),
		Domain:           src.Domain,
		RunningTime:      src.RunningTime,
		Venue:            strings.TrimSpace(src.Venue),
		Area:             strings.TrimSpace(src.Area),
		SourceID:         src.SourceID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	categoryNames := src.Categories

	borrowed := false
	if slot >= 0 && b.matcher != nil {
		if entry, ok := b.matcher.Match(title, rec.Directors); ok {
			borrowIdentity(&rec, entry)
			borrowed = true
			if genres := domain.CleanList(entry.Genres); len(genres) > 0 {
				categoryNames = genres
			}
		}
	}

	if domain.IsBlankPlot(rec.Plot) {
		rec.Plot = domain.PlotUnavailable
	}
	rec.TitleKey = domain.TitleKey(rec.Title)
	rec.Categories = b.resolveCategories(ctx, categoryNames, rec.Domain)

	update := false
	if b.index != nil {
		update = b.index.Knows(rec.Code, rec.Title)
		// A venue listing stored before the catalog entry was imported has
		// no code; the writer finds it by title.
		if !update && borrowed {
			update = b.index.HasTitle(rec.Title)
		}
	}
	return domain.Candidate{Record: rec, Update: update}, nil
}

// borrowIdentity overrides scraped fields with the catalog entry.
func borrowIdentity(rec *domain.CanonicalRecord, entry domain.AuthoritativeEntry) {
	rec.Code = entry.Code
	if t := strings.TrimSpace(entry.Title); t != "" {
		rec.Title = t
	}
	if entry.OpeningTime != 0 {
		rec.OpeningTime = entry.OpeningTime
	}
	if d := domain.CleanList(entry.Directors); len(d) > 0 {
		rec.Directors = d
	}
	if c := domain.CleanList(entry.Cast); len(c) > 0 {
		rec.Cast = c
	}
	if c := domain.CleanList(entry.Companies); len(c) > 0 {
		rec.Companies = c
	}
	if entry.RunningTime > 0 {
		rec.RunningTime = entry.RunningTime
	}
}

func (b *RecordBuilder) resolveCategories(ctx context.Context, names []string, d domain.Domain) []domain.CategoryRef {
	names = domain.CleanList(names)
	if len(names) == 0 {
		names = []string{domain.UncategorizedName}
	}
	if b.categories == nil {
		return nil
	}

	refs := make([]domain.CategoryRef, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		c := b.categories.Resolve(ctx, name, d.String())
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		refs = append(refs, c.Ref())
	}
	return refs
}
