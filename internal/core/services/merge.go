package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// MergeWriter reconciles candidates with stored records and submits the
// resulting creates and fill-gaps updates as one batch.
type MergeWriter struct {
	store driven.RecordStore
}

// NewMergeWriter creates a writer over a record store.
func NewMergeWriter(store driven.RecordStore) *MergeWriter {
	return &MergeWriter{store: store}
}

// pending tracks one queued operation and the record state it will leave.
type pending struct {
	op   int
	work *domain.CanonicalRecord
}

// Upsert writes the candidates and returns one result per candidate, in
// order. Only empty fields of a stored record are filled: reservation links
// are merged slot by slot, poster and plot are set only when missing.
// Candidates sharing an identity with an earlier candidate of the same call
// are folded into that candidate's operation.
func (w *MergeWriter) Upsert(ctx context.Context, candidates []domain.Candidate) []domain.WriteResult {
	results := make([]domain.WriteResult, len(candidates))
	owner := make([]int, len(candidates))

	var ops []domain.WriteOp
	creates := make(map[string]*pending)
	updates := make(map[string]*pending)

	for i := range candidates {
		rec := candidates[i].Record
		owner[i] = -1
		results[i] = domain.WriteResult{Key: rec.Key()}

		if p := lookupPending(creates, &rec); p != nil {
			patch := computePatch(p.work, &rec)
			patch.Apply(p.work)
			owner[i] = p.op
			results[i].RecordID = p.work.ID
			results[i].Fields = patch.Fields()
			results[i].Outcome = foldedOutcome(patch)
			continue
		}

		var existing *domain.CanonicalRecord
		if candidates[i].Update {
			found, err := w.lookup(ctx, &rec)
			if err != nil {
				logger.Warn("lookup %s failed: %v", rec.Key(), err)
				results[i].Outcome = domain.OutcomeFailed
				results[i].Err = err
				continue
			}
			existing = found
		}

		if existing == nil {
			created := rec
			ops = append(ops, domain.WriteOp{Kind: domain.OpCreate, Record: &created})
			p := &pending{op: len(ops) - 1, work: &created}
			registerPending(creates, p)
			owner[i] = p.op
			results[i].RecordID = created.ID
			results[i].Outcome = domain.OutcomeCreated
			continue
		}

		p, queued := updates[existing.ID]
		if !queued {
			work := *existing
			p = &pending{op: -1, work: &work}
			updates[existing.ID] = p
		}
		patch := computePatch(p.work, &rec)
		results[i].RecordID = existing.ID
		if patch.IsEmpty() {
			results[i].Outcome = domain.OutcomeSkipped
			continue
		}
		patch.Apply(p.work)
		if p.op < 0 {
			ops = append(ops, domain.WriteOp{Kind: domain.OpUpdate, ID: existing.ID})
			p.op = len(ops) - 1
		}
		ops[p.op].Patch = mergePatches(ops[p.op].Patch, patch)
		owner[i] = p.op
		results[i].Fields = patch.Fields()
		results[i].Outcome = domain.OutcomeMerged
	}

	if len(ops) == 0 {
		return results
	}

	opResults, err := w.store.Bulk(ctx, ops)
	if err == nil && len(opResults) != len(ops) {
		err = fmt.Errorf("bulk returned %d results for %d operations", len(opResults), len(ops))
	}
	for i := range results {
		if owner[i] < 0 {
			continue
		}
		var opErr error
		if err != nil {
			opErr = err
		} else {
			opErr = opResults[owner[i]].Err
		}
		if opErr != nil {
			if !errors.Is(opErr, domain.ErrStoreWrite) {
				opErr = fmt.Errorf("%w: %w", domain.ErrStoreWrite, opErr)
			}
			results[i].Outcome = domain.OutcomeFailed
			results[i].Err = opErr
			results[i].Fields = nil
		}
	}
	return results
}

// lookup finds the stored record by exact code, then exact title key.
// A missing record is not an error.
func (w *MergeWriter) lookup(ctx context.Context, rec *domain.CanonicalRecord) (*domain.CanonicalRecord, error) {
	if rec.Code != "" {
		found, err := w.store.FindByCode(ctx, rec.Code)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find by code %s: %w", rec.Code, err)
		}
	}
	if rec.TitleKey == "" {
		return nil, nil
	}
	found, err := w.store.FindByTitleKey(ctx, rec.TitleKey)
	if err == nil {
		return found, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("find by title %q: %w", rec.TitleKey, err)
}

func lookupPending(creates map[string]*pending, rec *domain.CanonicalRecord) *pending {
	if rec.Code != "" {
		if p, ok := creates["code:"+rec.Code]; ok {
			return p
		}
	}
	if rec.TitleKey != "" {
		if p, ok := creates["title:"+rec.TitleKey]; ok {
			return p
		}
	}
	return nil
}

func registerPending(creates map[string]*pending, p *pending) {
	if p.work.Code != "" {
		creates["code:"+p.work.Code] = p
	}
	if p.work.TitleKey != "" {
		if _, taken := creates["title:"+p.work.TitleKey]; !taken {
			creates["title:"+p.work.TitleKey] = p
		}
	}
}

func foldedOutcome(patch domain.RecordPatch) domain.WriteOutcome {
	if patch.IsEmpty() {
		return domain.OutcomeSkipped
	}
	return domain.OutcomeMerged
}

// computePatch returns the fill-gaps changes incoming brings to existing.
// Applying the result and computing again yields an empty patch.
func computePatch(existing, incoming *domain.CanonicalRecord) domain.RecordPatch {
	var patch domain.RecordPatch

	current := normalizeLinks(existing.ReservationLinks)
	merged := make([]string, domain.ReservationSlotCount)
	for i := range merged {
		if link := linkAt(incoming.ReservationLinks, i); link != "" {
			merged[i] = link
		} else {
			merged[i] = current[i]
		}
	}
	if !slices.Equal(merged, current) {
		patch.ReservationLinks = merged
	}

	if strings.TrimSpace(existing.Poster) == "" {
		if poster := strings.TrimSpace(incoming.Poster); poster != "" {
			patch.Poster = &poster
		}
	}

	if domain.IsBlankPlot(existing.Plot) && !domain.IsBlankPlot(incoming.Plot) {
		plot := strings.TrimSpace(incoming.Plot)
		patch.Plot = &plot
	}
	return patch
}

// mergePatches combines two patches for the same record; fields set by
// next win.
func mergePatches(prev, next domain.RecordPatch) domain.RecordPatch {
	if next.ReservationLinks != nil {
		prev.ReservationLinks = next.ReservationLinks
	}
	if next.Poster != nil {
		prev.Poster = next.Poster
	}
	if next.Plot != nil {
		prev.Plot = next.Plot
	}
	return prev
}

func normalizeLinks(links []string) []string {
	out := make([]string, domain.ReservationSlotCount)
	for i := range out {
		out[i] = linkAt(links, i)
	}
	return out
}

func linkAt(links []string, i int) string {
	if i >= len(links) {
		return ""
	}
	return strings.TrimSpace(links[i])
}
