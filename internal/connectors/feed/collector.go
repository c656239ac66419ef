// Package feed collects ticketing venue listings from a JSON feed.
//
// A scraper outside this process publishes one feed per venue, either as a
// file on disk or behind an HTTP endpoint. Over HTTP the feed is paginated
// with page and size query parameters; a file is read once and paginated
// in memory.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/keaunsolNa/knock-crawling/internal/connectors/ratelimit"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
	"github.com/keaunsolNa/knock-crawling/internal/normalisers/html"
)

// Ensure Collector implements the interface.
var _ driven.SourceCollector = (*Collector)(nil)

// DefaultPageSize is used when the configured page size is not positive.
const DefaultPageSize = 50

// Item is one listing in a feed document.
type Item struct {
	Title          string   `json:"title"`
	Code           string   `json:"code,omitempty"`
	OpeningDate    string   `json:"openingDate,omitempty"`
	Directors      []string `json:"directors,omitempty"`
	Cast           []string `json:"cast,omitempty"`
	Companies      []string `json:"companies,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	ReservationURL string   `json:"reservationUrl,omitempty"`
	Poster         string   `json:"poster,omitempty"`
	Plot           string   `json:"plot,omitempty"`
	RunningTime    int      `json:"runningTime,omitempty"`
	Recency        int64    `json:"recency,omitempty"`
}

// Document is a feed body. Bare arrays are accepted too.
type Document struct {
	Items []Item `json:"items"`

	// Total is the item count across all pages, when the server knows it.
	Total int `json:"total,omitempty"`
}

// Collector reads one venue feed.
type Collector struct {
	sourceID string
	cfg      domain.FeedSettings
	client   *ratelimit.Client
	closed   atomic.Bool

	// File feeds are loaded on first use.
	loadOnce sync.Once
	loaded   []Item
	loadErr  error
}

// New creates a collector for the venue sourceID (megabox, cgv or lotte).
func New(sourceID string, cfg domain.FeedSettings, client *ratelimit.Client) *Collector {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	cfg.Location = strings.TrimSpace(cfg.Location)
	return &Collector{sourceID: sourceID, cfg: cfg, client: client}
}

// Name returns the venue source identifier.
func (c *Collector) Name() string { return c.sourceID }

// Domain returns MOVIE.
func (c *Collector) Domain() domain.Domain { return domain.DomainMovie }

// ReservationSlot returns the venue's link slot.
func (c *Collector) ReservationSlot() int { return domain.ReservationSlotFor(c.sourceID) }

// PageSize returns the configured page size.
func (c *Collector) PageSize() int { return c.cfg.PageSize }

// FetchPage returns the page at cursor. The cursor is the one-based page
// number; empty means the first page.
func (c *Collector) FetchPage(ctx context.Context, cursor string) (driven.Page, error) {
	if c.closed.Load() {
		return driven.Page{}, domain.ErrCollectorClosed
	}

	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return driven.Page{}, fmt.Errorf("%s: invalid cursor %q: %w", c.sourceID, cursor, domain.ErrInvalidInput)
		}
		page = n
	}

	var (
		items []Item
		total int
		err   error
	)
	if isRemote(c.cfg.Location) {
		items, total, err = c.fetchRemote(ctx, page)
	} else {
		items, total, err = c.fetchFile(page)
	}
	if err != nil {
		return driven.Page{}, err
	}

	records := make([]domain.SourceRecord, 0, len(items))
	for _, it := range items {
		records = append(records, c.toSourceRecord(it))
	}

	result := driven.Page{Items: records, Next: strconv.Itoa(page + 1)}
	if len(items) == 0 || (total > 0 && page*c.cfg.PageSize >= total) {
		result.Done = true
	}
	return result, nil
}

// Detail returns rec unchanged; feed items are already complete.
func (c *Collector) Detail(_ context.Context, rec domain.SourceRecord) (domain.SourceRecord, error) {
	return rec, nil
}

// Close marks the collector closed.
func (c *Collector) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *Collector) fetchRemote(ctx context.Context, page int) ([]Item, int, error) {
	body, err := c.client.Get(ctx, c.cfg.Location, url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(c.cfg.PageSize)},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s feed: %w", c.sourceID, err)
	}
	doc, err := decode(body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s feed: decode: %w: %w", c.sourceID, domain.ErrSourceUnavailable, err)
	}
	return doc.Items, doc.Total, nil
}

func (c *Collector) fetchFile(page int) ([]Item, int, error) {
	c.loadOnce.Do(func() {
		path := strings.TrimPrefix(c.cfg.Location, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			c.loadErr = fmt.Errorf("%s feed: %w: %w", c.sourceID, domain.ErrSourceUnavailable, err)
			return
		}
		doc, err := decode(data)
		if err != nil {
			c.loadErr = fmt.Errorf("%s feed: decode %s: %w: %w", c.sourceID, path, domain.ErrSourceUnavailable, err)
			return
		}
		c.loaded = doc.Items
		logger.Debug("%s: loaded %d items from %s", c.sourceID, len(doc.Items), path)
	})
	if c.loadErr != nil {
		return nil, 0, c.loadErr
	}

	start := (page - 1) * c.cfg.PageSize
	if start >= len(c.loaded) {
		return nil, len(c.loaded), nil
	}
	end := min(start+c.cfg.PageSize, len(c.loaded))
	return c.loaded[start:end], len(c.loaded), nil
}

func (c *Collector) toSourceRecord(it Item) domain.SourceRecord {
	rec := domain.SourceRecord{
		SourceID:       c.sourceID,
		Domain:         domain.DomainMovie,
		Code:           strings.TrimSpace(it.Code),
		Title:          strings.TrimSpace(it.Title),
		Directors:      domain.CleanList(it.Directors),
		Cast:           domain.CleanList(it.Cast),
		Companies:      domain.CleanList(it.Companies),
		Categories:     domain.CleanList(it.Genres),
		ReservationURL: strings.TrimSpace(it.ReservationURL),
		Poster:         strings.TrimSpace(it.Poster),
		Plot:           html.Text(it.Plot),
		RunningTime:    it.RunningTime,
		Recency:        it.Recency,
	}
	if ms, ok := domain.ParseEpochMillis(it.OpeningDate); ok {
		rec.OpeningTime = ms
	} else if it.OpeningDate != "" {
		logger.Warn("%s: unrecognised openingDate %q for %s", c.sourceID, it.OpeningDate, rec.Label())
	}
	return rec
}

// decode accepts a Document or a bare array of items.
func decode(data []byte) (Document, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []Item
		if err := json.Unmarshal(data, &items); err != nil {
			return Document{}, err
		}
		return Document{Items: items}, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
