package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestionOrchestrator = (*IngestionOrchestrator)(nil)

// IngestOptions tunes a run. It can be swapped between runs.
type IngestOptions struct {
	Crawl    domain.CrawlSettings
	Identity domain.IdentityPolicy

	// LockPath is the cross-process run lock. Empty disables it.
	LockPath string
}

// IngestionDeps are the orchestrator's collaborators.
// Notifier and Metrics are optional.
type IngestionDeps struct {
	Records       driven.RecordStore
	Categories    driven.CategoryStore
	Authoritative driven.AuthoritativeStore
	Collectors    driven.CollectorFactory
	Notifier      driven.Notifier
	Metrics       driven.MetricsRecorder
}

// IngestionOrchestrator runs ingestion passes: every configured source in
// order, each crawled, reconciled and written before the next one starts.
type IngestionOrchestrator struct {
	deps IngestionDeps

	// run serialises passes within the process.
	run sync.Mutex

	mu     sync.RWMutex
	opts   IngestOptions
	status driving.RunStatus
}

// NewIngestionOrchestrator creates an orchestrator.
func NewIngestionOrchestrator(deps IngestionDeps, opts IngestOptions) *IngestionOrchestrator {
	return &IngestionOrchestrator{deps: deps, opts: opts}
}

// SetOptions replaces the options used by the next run.
func (o *IngestionOrchestrator) SetOptions(opts IngestOptions) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opts = opts
}

// runCaches are the per-run caches. They are never shared between runs.
type runCaches struct {
	categories *CategoryResolver
	identity   *IdentityMatcher
	index      *CanonicalIndex
}

// RunOnce runs one full ingestion pass.
// Returns domain.ErrRunInProgress when another pass holds the lock.
func (o *IngestionOrchestrator) RunOnce(ctx context.Context) (*domain.RunReport, error) {
	if !o.run.TryLock() {
		return nil, domain.ErrRunInProgress
	}
	defer o.run.Unlock()

	o.mu.RLock()
	opts := o.opts
	o.mu.RUnlock()

	if opts.LockPath != "" {
		lock := flock.New(opts.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s is locked", domain.ErrRunInProgress, opts.LockPath)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("release run lock: %v", err)
			}
		}()
	}

	collectors, err := o.deps.Collectors.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build collectors: %w", err)
	}
	defer func() {
		for _, c := range collectors {
			if err := c.Close(); err != nil {
				logger.Warn("close %s: %v", c.Name(), err)
			}
		}
	}()

	report := &domain.RunReport{StartedAt: time.Now()}
	o.beginRun()
	defer o.endRun()

	caches := o.loadCaches(ctx, opts.Identity)
	crawler := NewCrawlController(opts.Crawl)
	builder := NewRecordBuilder(caches.categories, caches.identity, caches.index)
	writer := NewMergeWriter(o.deps.Records)

	for _, c := range collectors {
		if err := ctx.Err(); err != nil {
			break
		}
		o.setCurrent(c.Name())
		logger.Section(c.Name())

		sr := o.runSource(ctx, c, caches, crawler, builder, writer)
		report.Sources = append(report.Sources, sr)
		o.finishSource(sr.Produced())

		if sr.Err != nil {
			logger.Error("source %s aborted: %v", sr.SourceID, sr.Err)
		} else {
			logger.Info("%s", sr.Summary())
		}
	}
	report.EndedAt = time.Now()

	o.publish(ctx, report)
	return report, nil
}

func (o *IngestionOrchestrator) loadCaches(ctx context.Context, policy domain.IdentityPolicy) runCaches {
	caches := runCaches{
		categories: NewCategoryResolver(o.deps.Categories),
		identity:   NewIdentityMatcher(o.deps.Authoritative, policy),
		index:      NewCanonicalIndex(o.deps.Records),
	}
	// Load failures are logged by the caches; they degrade to empty.
	_ = caches.categories.Preload(ctx, domain.DomainMovie.String())
	_ = caches.categories.Preload(ctx, domain.DomainPerformingArts.String())
	_ = caches.identity.Load(ctx)
	return caches
}

// runSource crawls, builds and writes one source. Failures are recorded in
// the returned report.
func (o *IngestionOrchestrator) runSource(
	ctx context.Context,
	c driven.SourceCollector,
	caches runCaches,
	crawler *CrawlController,
	builder *RecordBuilder,
	writer *MergeWriter,
) domain.SourceReport {
	sr := domain.SourceReport{SourceID: c.Name(), StartedAt: time.Now()}

	// Earlier sources' writes must be visible to this one.
	_ = caches.index.Reload(ctx)

	result, err := crawler.Crawl(ctx, c, existsFor(c.Name(), caches.index))
	sr.Pages = result.Pages
	sr.Fetched = len(result.Items)
	sr.Cutoff = result.Reason
	if err != nil {
		sr.Err = err
		sr.EndedAt = time.Now()
		return sr
	}

	candidates := make([]domain.Candidate, 0, len(result.Items))
	for i := range result.Items {
		cand, err := builder.Build(ctx, result.Items[i], c.ReservationSlot())
		if err != nil {
			sr.Malformed++
			logger.Warn("%s: skipping item: %v", c.Name(), err)
			continue
		}
		candidates = append(candidates, cand)
	}

	for _, res := range writer.Upsert(ctx, candidates) {
		sr.Count(res.Outcome)
		switch res.Outcome {
		case domain.OutcomeFailed:
			logger.Warn("%s: write %s failed: %v", c.Name(), res.Key, res.Err)
		case domain.OutcomeMerged:
			logger.Debug("%s: merged %s %v", c.Name(), res.Key, res.Fields)
		}
	}
	sr.EndedAt = time.Now()
	return sr
}

// existsFor returns the duplicate predicate for a source. Only the film
// catalog is recency ordered; every other source is read in full.
func existsFor(sourceID string, index *CanonicalIndex) ExistsFunc {
	if sourceID == domain.SourceKOFIC {
		return func(item domain.SourceRecord) bool {
			return index.HasCode(item.Code)
		}
	}
	return nil
}

// publish sends one notification line per source and updates metrics.
func (o *IngestionOrchestrator) publish(ctx context.Context, report *domain.RunReport) {
	if o.deps.Metrics != nil {
		for i := range report.Sources {
			o.deps.Metrics.ObserveSource(report.Sources[i])
		}
		o.deps.Metrics.ObserveRun(*report)
	}

	if o.deps.Notifier == nil {
		return
	}
	var errs []error
	for i := range report.Sources {
		if err := o.deps.Notifier.Notify(ctx, report.Sources[i].Summary()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("notification failed: %v", err)
	}
}

// Status returns the progress of the current run.
func (o *IngestionOrchestrator) Status(_ context.Context) (*driving.RunStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status := o.status
	return &status, nil
}

func (o *IngestionOrchestrator) beginRun() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = driving.RunStatus{Running: true}
}

func (o *IngestionOrchestrator) endRun() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Running = false
	o.status.CurrentSource = ""
}

func (o *IngestionOrchestrator) setCurrent(source string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.CurrentSource = source
}

func (o *IngestionOrchestrator) finishSource(produced int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.SourcesDone++
	o.status.RecordsProduced += produced
}
