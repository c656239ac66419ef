package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// ExistsFunc reports whether an item is already stored.
// A nil ExistsFunc disables the duplicate cutoff.
type ExistsFunc func(item domain.SourceRecord) bool

// CrawlResult is the outcome of one paginated crawl.
type CrawlResult struct {
	// Items are the records to write, in source order.
	Items []domain.SourceRecord

	// Pages is the number of pages fetched.
	Pages int

	// Reason is why the crawl stopped.
	Reason domain.CutoffReason

	// StoppedAt is the known item that triggered a duplicate cutoff.
	StoppedAt *domain.SourceRecord
}

// CrawlController walks a collector's pages newest first and stops at the
// first item that is already stored.
type CrawlController struct {
	maxPages int
	workers  int
}

// NewCrawlController creates a controller from the crawl settings.
func NewCrawlController(settings domain.CrawlSettings) *CrawlController {
	maxPages := settings.MaxPages
	if maxPages <= 0 {
		maxPages = domain.DefaultMaxPages
	}
	workers := settings.DetailWorkers
	if workers < 1 {
		workers = 1
	}
	return &CrawlController{maxPages: maxPages, workers: workers}
}

// Crawl fetches pages until the source runs out of data or exists reports a
// known item. Items on the stopping page before the known item are kept; the
// known item and everything after it are discarded.
//
// When items carry a Recency key the order is asserted to be non-increasing.
// On the first violation the duplicate cutoff is switched off and the source
// is read to the end, leaving deduplication to the writer.
//
// Reaching the page ceiling returns domain.ErrPageLimit together with the
// partial result.
func (c *CrawlController) Crawl(ctx context.Context, collector driven.SourceCollector, exists ExistsFunc) (CrawlResult, error) {
	var (
		result   CrawlResult
		cursor   string
		last     int64
		fullScan = exists == nil
		ordered  = true
	)
	pageSize := collector.PageSize()

	for {
		if result.Pages >= c.maxPages {
			return result, fmt.Errorf("%s: %d pages: %w", collector.Name(), result.Pages, domain.ErrPageLimit)
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, err := collector.FetchPage(ctx, cursor)
		if err != nil {
			return result, fmt.Errorf("%s page %d: %w", collector.Name(), result.Pages+1, err)
		}
		result.Pages++

		if len(page.Items) == 0 {
			result.Reason = c.endReason(ordered, exists)
			return result, nil
		}

		items, err := c.enrich(ctx, collector, page.Items)
		if err != nil {
			return result, err
		}

		for i := range items {
			item := items[i]
			if item.Recency != 0 {
				if ordered && last != 0 && item.Recency > last {
					ordered = false
					fullScan = true
					logger.Warn("%s: recency order violated at %q, switching to full scan", collector.Name(), item.Title)
				}
				last = item.Recency
			}

			if !fullScan && exists(item) {
				logger.Info("%s: reached known item %s on page %d", collector.Name(), item.Label(), result.Pages)
				result.Reason = domain.CutoffDuplicate
				result.StoppedAt = &item
				return result, nil
			}
			result.Items = append(result.Items, item)
		}

		if page.Done || (pageSize > 0 && len(page.Items) < pageSize) {
			result.Reason = c.endReason(ordered, exists)
			return result, nil
		}
		cursor = page.Next
	}
}

func (c *CrawlController) endReason(ordered bool, exists ExistsFunc) domain.CutoffReason {
	if !ordered && exists != nil {
		return domain.CutoffFullScan
	}
	return domain.CutoffEndOfData
}

// enrich fetches detail data for a page, keeping the original order.
// A failed detail fetch keeps the listing data.
func (c *CrawlController) enrich(ctx context.Context, collector driven.SourceCollector, items []domain.SourceRecord) ([]domain.SourceRecord, error) {
	out := make([]domain.SourceRecord, len(items))

	if c.workers == 1 || len(items) == 1 {
		for i := range items {
			rec, err := c.detail(ctx, collector, items[i])
			if err != nil {
				return nil, err
			}
			out[i] = rec
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range items {
		g.Go(func() error {
			rec, err := c.detail(gctx, collector, items[i])
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// detail returns an error only when the context is done.
func (c *CrawlController) detail(ctx context.Context, collector driven.SourceCollector, item domain.SourceRecord) (domain.SourceRecord, error) {
	rec, err := collector.Detail(ctx, item)
	if err == nil {
		return rec, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return item, ctxErr
	}
	logger.Warn("%s: detail for %s failed, keeping listing data: %v", collector.Name(), item.Label(), err)
	return item, nil
}
