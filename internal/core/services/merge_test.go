package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

func candidate(id, code, title string, update bool, mutate ...func(*domain.CanonicalRecord)) domain.Candidate {
	rec := domain.CanonicalRecord{
		ID:               id,
		Code:             code,
		Title:            title,
		TitleKey:         domain.TitleKey(title),
		ReservationLinks: make([]string, domain.ReservationSlotCount),
		Plot:             domain.PlotUnavailable,
		Domain:           domain.DomainMovie,
	}
	for _, m := range mutate {
		m(&rec)
	}
	return domain.Candidate{Record: rec, Update: update}
}

func getRecord(t *testing.T, store *faultyRecordStore, id string) *domain.CanonicalRecord {
	t.Helper()
	rec, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return rec
}

func TestMergeWriter_CreatesNewRecords(t *testing.T) {
	store := newFaultyRecordStore()
	w := NewMergeWriter(store)

	results := w.Upsert(context.Background(), []domain.Candidate{
		candidate("a", "K1", "Alpha", false),
		candidate("b", "", "Beta", false),
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.OutcomeCreated, r.Outcome)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, "code:K1", results[0].Key)
	assert.Equal(t, "title:beta", results[1].Key)
	require.Len(t, store.bulkOps, 1, "one batch per call")
	assert.Len(t, store.bulkOps[0], 2)
}

func TestMergeWriter_FillsGapsOnly(t *testing.T) {
	store := newFaultyRecordStore()
	seed(t, store, domain.CanonicalRecord{
		ID:               "1",
		Code:             "K1",
		Title:            "Alpha",
		ReservationLinks: []string{"https://megabox/alpha", "", ""},
		Poster:           "https://img/alpha-old.jpg",
		Plot:             "Original plot",
	})

	incoming := candidate("new-id", "K1", "Alpha", true, func(r *domain.CanonicalRecord) {
		r.ReservationLinks = []string{"", "https://cgv/alpha", ""}
		r.Poster = "https://img/alpha-new.jpg"
		r.Plot = "Another plot"
	})

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{incoming})

	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeMerged, results[0].Outcome)
	assert.Equal(t, "1", results[0].RecordID)
	assert.Equal(t, []string{"reservationLinks"}, results[0].Fields)

	got := getRecord(t, store, "1")
	assert.Equal(t, []string{"https://megabox/alpha", "https://cgv/alpha", ""}, got.ReservationLinks)
	assert.Equal(t, "https://img/alpha-old.jpg", got.Poster)
	assert.Equal(t, "Original plot", got.Plot)
}

func TestMergeWriter_FillsBlankPlotAndPoster(t *testing.T) {
	store := newFaultyRecordStore()
	seed(t, store, domain.CanonicalRecord{ID: "1", Title: "Alpha", Plot: domain.PlotUnavailable})

	incoming := candidate("x", "", "alpha", true, func(r *domain.CanonicalRecord) {
		r.Plot = "  A real synopsis "
		r.Poster = "https://img/a.jpg"
	})
	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{incoming})

	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeMerged, results[0].Outcome)
	assert.Equal(t, []string{"poster", "plot"}, results[0].Fields)

	got := getRecord(t, store, "1")
	assert.Equal(t, "A real synopsis", got.Plot)
	assert.Equal(t, "https://img/a.jpg", got.Poster)
}

func TestMergeWriter_BlankIncomingNeverClears(t *testing.T) {
	store := newFaultyRecordStore()
	seed(t, store, domain.CanonicalRecord{
		ID:               "1",
		Code:             "K1",
		Title:            "Alpha",
		ReservationLinks: []string{"m", "c", "l"},
		Poster:           "p",
		Plot:             "plot",
	})

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{
		candidate("x", "K1", "Alpha", true),
	})

	assert.Equal(t, domain.OutcomeSkipped, results[0].Outcome)
	assert.Empty(t, store.bulkOps, "nothing to write")

	got := getRecord(t, store, "1")
	assert.Equal(t, []string{"m", "c", "l"}, got.ReservationLinks)
	assert.Equal(t, "plot", got.Plot)
}

func TestMergeWriter_Idempotent(t *testing.T) {
	store := newFaultyRecordStore()
	seed(t, store, domain.CanonicalRecord{ID: "1", Title: "Alpha"})
	w := NewMergeWriter(store)
	ctx := context.Background()

	c := candidate("x", "", "Alpha", true, func(r *domain.CanonicalRecord) {
		r.ReservationLinks = []string{"", "", "https://lotte/alpha"}
		r.Plot = "Synopsis"
	})

	first := w.Upsert(ctx, []domain.Candidate{c})
	assert.Equal(t, domain.OutcomeMerged, first[0].Outcome)
	after := getRecord(t, store, "1")

	second := w.Upsert(ctx, []domain.Candidate{c})
	assert.Equal(t, domain.OutcomeSkipped, second[0].Outcome)
	again := getRecord(t, store, "1")
	assert.Equal(t, after.ReservationLinks, again.ReservationLinks)
	assert.Equal(t, after.Plot, again.Plot)
}

func TestMergeWriter_UpdateFlagWithoutStoredRecordCreates(t *testing.T) {
	store := newFaultyRecordStore()

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{
		candidate("a", "K7", "Ghost", true),
	})

	assert.Equal(t, domain.OutcomeCreated, results[0].Outcome)
	assert.Equal(t, 2, store.findHits, "code then title key")
	getRecord(t, store, "a")
}

func TestMergeWriter_FoldsDuplicatesWithinBatch(t *testing.T) {
	store := newFaultyRecordStore()

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{
		candidate("a", "", "Alpha", false, func(r *domain.CanonicalRecord) {
			r.ReservationLinks = []string{"https://megabox/alpha", "", ""}
		}),
		candidate("b", "", " ALPHA ", false, func(r *domain.CanonicalRecord) {
			r.ReservationLinks = []string{"", "https://cgv/alpha", ""}
		}),
		candidate("c", "", "alpha", false),
	})

	require.Len(t, results, 3)
	assert.Equal(t, domain.OutcomeCreated, results[0].Outcome)
	assert.Equal(t, domain.OutcomeMerged, results[1].Outcome)
	assert.Equal(t, domain.OutcomeSkipped, results[2].Outcome)
	for _, r := range results {
		assert.Equal(t, "a", r.RecordID)
	}

	require.Len(t, store.bulkOps, 1)
	assert.Len(t, store.bulkOps[0], 1, "one create for the shared identity")

	got := getRecord(t, store, "a")
	assert.Equal(t, []string{"https://megabox/alpha", "https://cgv/alpha", ""}, got.ReservationLinks)
}

func TestMergeWriter_CombinesUpdatesToSameRecord(t *testing.T) {
	store := newFaultyRecordStore()
	seed(t, store, domain.CanonicalRecord{ID: "1", Code: "K1", Title: "Alpha"})

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{
		candidate("x", "K1", "Alpha", true, func(r *domain.CanonicalRecord) {
			r.ReservationLinks = []string{"m", "", ""}
		}),
		candidate("y", "K1", "Alpha", true, func(r *domain.CanonicalRecord) {
			r.ReservationLinks = []string{"", "", "l"}
			r.Plot = "Synopsis"
		}),
	})

	assert.Equal(t, domain.OutcomeMerged, results[0].Outcome)
	assert.Equal(t, domain.OutcomeMerged, results[1].Outcome)
	assert.Equal(t, []string{"reservationLinks", "plot"}, results[1].Fields)

	require.Len(t, store.bulkOps, 1)
	require.Len(t, store.bulkOps[0], 1, "one update per stored record")

	got := getRecord(t, store, "1")
	assert.Equal(t, []string{"m", "", "l"}, got.ReservationLinks)
	assert.Equal(t, "Synopsis", got.Plot)
}

func TestMergeWriter_ItemFailureIsIsolated(t *testing.T) {
	store := newFaultyRecordStore()
	store.failIDs["b"] = true

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{
		candidate("a", "K1", "Alpha", false),
		candidate("b", "K2", "Beta", false),
		candidate("c", "K3", "Gamma", false),
	})

	assert.Equal(t, domain.OutcomeCreated, results[0].Outcome)
	assert.Equal(t, domain.OutcomeFailed, results[1].Outcome)
	assert.ErrorIs(t, results[1].Err, domain.ErrStoreWrite)
	assert.Equal(t, domain.OutcomeCreated, results[2].Outcome)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMergeWriter_WholeBatchFailure(t *testing.T) {
	store := newFaultyRecordStore()
	seed(t, store, domain.CanonicalRecord{ID: "1", Code: "K1", Title: "Alpha", Plot: "kept"})
	store.bulkErr = errors.New("database is locked")

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{
		candidate("a", "K2", "Beta", false),
		candidate("x", "K1", "Alpha", true),
	})

	assert.Equal(t, domain.OutcomeFailed, results[0].Outcome)
	assert.ErrorIs(t, results[0].Err, domain.ErrStoreWrite)
	assert.Equal(t, domain.OutcomeSkipped, results[1].Outcome, "items without an operation are unaffected")
	assert.NoError(t, results[1].Err)
}

func TestMergeWriter_LookupFailureIsIsolated(t *testing.T) {
	store := newFaultyRecordStore()
	store.findErr = errors.New("read timeout")

	results := NewMergeWriter(store).Upsert(context.Background(), []domain.Candidate{
		candidate("x", "K1", "Alpha", true),
		candidate("b", "K2", "Beta", false),
	})

	assert.Equal(t, domain.OutcomeFailed, results[0].Outcome)
	assert.Error(t, results[0].Err)
	assert.Equal(t, domain.OutcomeCreated, results[1].Outcome)
}

func TestMergeWriter_EmptyInput(t *testing.T) {
	store := newFaultyRecordStore()
	results := NewMergeWriter(store).Upsert(context.Background(), nil)
	assert.Empty(t, results)
	assert.Empty(t, store.bulkOps)
}

func TestComputePatch(t *testing.T) {
	tests := []struct {
		name     string
		existing domain.CanonicalRecord
		incoming domain.CanonicalRecord
		want     []string
	}{
		{
			name:     "short existing links are padded",
			existing: domain.CanonicalRecord{ReservationLinks: []string{"m"}, Plot: "p", Poster: "x"},
			incoming: domain.CanonicalRecord{ReservationLinks: []string{"", "c"}},
			want:     []string{"reservationLinks"},
		},
		{
			name:     "incoming link replaces a stale one in its slot",
			existing: domain.CanonicalRecord{ReservationLinks: []string{"old", "", ""}, Plot: "p", Poster: "x"},
			incoming: domain.CanonicalRecord{ReservationLinks: []string{"new", "", ""}},
			want:     []string{"reservationLinks"},
		},
		{
			name:     "unavailable marker does not fill a blank plot",
			existing: domain.CanonicalRecord{Poster: "x"},
			incoming: domain.CanonicalRecord{Plot: domain.PlotUnavailable},
			want:     nil,
		},
		{
			name:     "whitespace poster counts as blank",
			existing: domain.CanonicalRecord{Poster: "  ", Plot: "p"},
			incoming: domain.CanonicalRecord{Poster: "img"},
			want:     []string{"poster"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := computePatch(&tt.existing, &tt.incoming)
			assert.Equal(t, tt.want, patch.Fields())

			patch.Apply(&tt.existing)
			assert.True(t, computePatch(&tt.existing, &tt.incoming).IsEmpty(), "patch is idempotent")
		})
	}
}
