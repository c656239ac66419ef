package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driven/storage/memory"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

// --- Shared fakes for service tests ---

// fakeCollector serves fixed pages. The cursor is the page index.
type fakeCollector struct {
	name     string
	dom      domain.Domain
	slot     int
	pageSize int
	pages    [][]domain.SourceRecord

	// failPage makes FetchPage fail for that page index (1-based, 0 = never).
	failPage int

	// detail replaces the default pass-through detail fetch.
	detail func(domain.SourceRecord) (domain.SourceRecord, error)

	mu      sync.Mutex
	fetched []int
	closed  bool
}

func newFakeCollector(name string, pages ...[]domain.SourceRecord) *fakeCollector {
	return &fakeCollector{
		name:  name,
		dom:   domain.DomainMovie,
		slot:  domain.ReservationSlotFor(name),
		pages: pages,
	}
}

func (f *fakeCollector) Name() string          { return f.name }
func (f *fakeCollector) Domain() domain.Domain { return f.dom }
func (f *fakeCollector) ReservationSlot() int  { return f.slot }
func (f *fakeCollector) PageSize() int         { return f.pageSize }

func (f *fakeCollector) FetchPage(_ context.Context, cursor string) (driven.Page, error) {
	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return driven.Page{}, fmt.Errorf("bad cursor %q", cursor)
		}
		idx = n
	}

	f.mu.Lock()
	f.fetched = append(f.fetched, idx+1)
	f.mu.Unlock()

	if f.failPage == idx+1 {
		return driven.Page{}, fmt.Errorf("%s: %w", f.name, domain.ErrSourceUnavailable)
	}
	if idx >= len(f.pages) {
		return driven.Page{}, nil
	}
	return driven.Page{Items: f.pages[idx], Next: strconv.Itoa(idx + 1)}, nil
}

func (f *fakeCollector) Detail(_ context.Context, rec domain.SourceRecord) (domain.SourceRecord, error) {
	if f.detail != nil {
		return f.detail(rec)
	}
	return rec, nil
}

func (f *fakeCollector) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCollector) fetchedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.fetched...)
}

var _ driven.SourceCollector = (*fakeCollector)(nil)

// staticFactory returns the same collectors on every Build.
type staticFactory struct {
	collectors []driven.SourceCollector
	err        error
}

func (s *staticFactory) Build(_ context.Context) ([]driven.SourceCollector, error) {
	return s.collectors, s.err
}

// item builds a listing record for sourceID.
func item(sourceID, title, code string) domain.SourceRecord {
	return domain.SourceRecord{
		SourceID: sourceID,
		Domain:   domain.DomainMovie,
		Title:    title,
		Code:     code,
	}
}

func titles(items []domain.SourceRecord) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Title
	}
	return out
}

// faultyRecordStore wraps the memory store with injectable failures.
type faultyRecordStore struct {
	*memory.RecordStore

	scanErr  error
	findErr  error
	bulkErr  error
	failIDs  map[string]bool
	bulkOps  [][]domain.WriteOp
	bulkMu   sync.Mutex
	findHits int
}

func newFaultyRecordStore() *faultyRecordStore {
	return &faultyRecordStore{RecordStore: memory.NewRecordStore(), failIDs: map[string]bool{}}
}

func (s *faultyRecordStore) Scan(ctx context.Context, pageSize int, fn func([]domain.CanonicalRecord) error) error {
	if s.scanErr != nil {
		return s.scanErr
	}
	return s.RecordStore.Scan(ctx, pageSize, fn)
}

func (s *faultyRecordStore) FindByCode(ctx context.Context, code string) (*domain.CanonicalRecord, error) {
	s.findHits++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.RecordStore.FindByCode(ctx, code)
}

func (s *faultyRecordStore) FindByTitleKey(ctx context.Context, key string) (*domain.CanonicalRecord, error) {
	s.findHits++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.RecordStore.FindByTitleKey(ctx, key)
}

func (s *faultyRecordStore) Bulk(ctx context.Context, ops []domain.WriteOp) ([]domain.OpResult, error) {
	s.bulkMu.Lock()
	s.bulkOps = append(s.bulkOps, ops)
	s.bulkMu.Unlock()

	if s.bulkErr != nil {
		return nil, s.bulkErr
	}

	results := make([]domain.OpResult, len(ops))
	var pass []domain.WriteOp
	var passIdx []int
	for i, op := range ops {
		id := op.ID
		if op.Record != nil {
			id = op.Record.ID
		}
		if s.failIDs[id] {
			results[i] = domain.OpResult{ID: id, Err: errors.New("disk full")}
			continue
		}
		pass = append(pass, op)
		passIdx = append(passIdx, i)
	}
	inner, err := s.RecordStore.Bulk(ctx, pass)
	if err != nil {
		return nil, err
	}
	for j, r := range inner {
		results[passIdx[j]] = r
	}
	return results, nil
}

// stubCategoryStore counts calls and injects failures.
type stubCategoryStore struct {
	*memory.CategoryStore

	mu          sync.Mutex
	listErr     error
	findErr     error
	createErr   error
	finds       int
	createCalls int

	// beforeCreate runs ahead of every Create, e.g. to simulate a
	// concurrent writer.
	beforeCreate func()
}

func newStubCategoryStore() *stubCategoryStore {
	return &stubCategoryStore{CategoryStore: memory.NewCategoryStore()}
}

func (s *stubCategoryStore) ListByParent(ctx context.Context, parent string) ([]domain.Category, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.CategoryStore.ListByParent(ctx, parent)
}

func (s *stubCategoryStore) Find(ctx context.Context, name, parent string) (*domain.Category, error) {
	s.mu.Lock()
	s.finds++
	s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.CategoryStore.Find(ctx, name, parent)
}

func (s *stubCategoryStore) Create(ctx context.Context, c domain.Category) error {
	s.mu.Lock()
	s.createCalls++
	s.mu.Unlock()
	if s.beforeCreate != nil {
		s.beforeCreate()
	}
	if s.createErr != nil {
		return s.createErr
	}
	return s.CategoryStore.Create(ctx, c)
}

// failingAuthStore fails ListAll.
type failingAuthStore struct{ err error }

func (s failingAuthStore) ListAll(context.Context) ([]domain.AuthoritativeEntry, error) {
	return nil, s.err
}

func (s failingAuthStore) Import(context.Context, []domain.AuthoritativeEntry) (int, error) {
	return 0, s.err
}

// recordingNotifier keeps every message.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

// recordingMetrics keeps every observation.
type recordingMetrics struct {
	sources []domain.SourceReport
	runs    int
}

func (m *recordingMetrics) ObserveSource(r domain.SourceReport) { m.sources = append(m.sources, r) }
func (m *recordingMetrics) ObserveRun(domain.RunReport)         { m.runs++ }

var (
	_ driven.RecordStore        = (*faultyRecordStore)(nil)
	_ driven.CategoryStore      = (*stubCategoryStore)(nil)
	_ driven.AuthoritativeStore = failingAuthStore{}
	_ driven.Notifier           = (*recordingNotifier)(nil)
	_ driven.MetricsRecorder    = (*recordingMetrics)(nil)
	_ driven.CollectorFactory   = (*staticFactory)(nil)
)
