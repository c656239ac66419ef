// Package kofic collects movies from the government film catalog API.
// The catalog is the authority for movie codes; its listing is read newest
// registration first.
package kofic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/keaunsolNa/knock-crawling/internal/connectors/ratelimit"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// Ensure Collector implements the interface.
var _ driven.SourceCollector = (*Collector)(nil)

// DefaultPageSize is used when the configured page size is not positive.
const DefaultPageSize = 10

// Collector reads the movie list page by page and the movie detail per code.
type Collector struct {
	cfg    domain.KOFICSettings
	client *ratelimit.Client
	closed atomic.Bool
}

// New creates a collector.
func New(cfg domain.KOFICSettings, client *ratelimit.Client) *Collector {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Collector{cfg: cfg, client: client}
}

// Name returns the source identifier.
func (c *Collector) Name() string { return domain.SourceKOFIC }

// Domain returns MOVIE.
func (c *Collector) Domain() domain.Domain { return domain.DomainMovie }

// ReservationSlot returns domain.NoSlot; the catalog sells no tickets.
func (c *Collector) ReservationSlot() int { return domain.NoSlot }

// PageSize returns the configured itemPerPage.
func (c *Collector) PageSize() int { return c.cfg.PageSize }

// FetchPage fetches the listing page at cursor. The cursor is the
// one-based page number; empty means the first page.
func (c *Collector) FetchPage(ctx context.Context, cursor string) (driven.Page, error) {
	if c.closed.Load() {
		return driven.Page{}, domain.ErrCollectorClosed
	}

	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return driven.Page{}, fmt.Errorf("kofic: invalid cursor %q: %w", cursor, domain.ErrInvalidInput)
		}
		page = n
	}

	query := url.Values{
		"key":         {c.cfg.APIKey},
		"curPage":     {strconv.Itoa(page)},
		"itemPerPage": {strconv.Itoa(c.cfg.PageSize)},
	}
	if c.cfg.OpenStartYear != "" {
		query.Set("openStartDt", c.cfg.OpenStartYear)
	}

	body, err := c.client.Get(ctx, c.cfg.ListURL, query)
	if err != nil {
		return driven.Page{}, fmt.Errorf("kofic list: %w", err)
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return driven.Page{}, fmt.Errorf("kofic list: decode: %w: %w", domain.ErrSourceUnavailable, err)
	}
	if resp.FaultInfo != nil {
		return driven.Page{}, fmt.Errorf("kofic list: %s (%s): %w",
			resp.FaultInfo.Message, resp.FaultInfo.ErrorCode, domain.ErrSourceUnavailable)
	}

	items := make([]domain.SourceRecord, 0, len(resp.MovieListResult.MovieList))
	for _, m := range resp.MovieListResult.MovieList {
		items = append(items, toSourceRecord(m))
	}

	result := driven.Page{Items: items, Next: strconv.Itoa(page + 1)}
	if total := resp.MovieListResult.TotCnt; total > 0 && page*c.cfg.PageSize >= total {
		result.Done = true
	}
	return result, nil
}

// Detail adds cast, running time and genres from the movie detail endpoint.
func (c *Collector) Detail(ctx context.Context, rec domain.SourceRecord) (domain.SourceRecord, error) {
	if rec.DetailRef == "" || c.cfg.DetailURL == "" {
		return rec, nil
	}

	body, err := c.client.Get(ctx, c.cfg.DetailURL, url.Values{
		"key":     {c.cfg.APIKey},
		"movieCd": {rec.DetailRef},
	})
	if err != nil {
		return rec, fmt.Errorf("kofic detail %s: %w", rec.DetailRef, err)
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return rec, fmt.Errorf("kofic detail %s: decode: %w: %w", rec.DetailRef, domain.ErrSourceUnavailable, err)
	}
	if resp.FaultInfo != nil {
		return rec, fmt.Errorf("kofic detail %s: %s: %w", rec.DetailRef, resp.FaultInfo.Message, domain.ErrSourceUnavailable)
	}

	info := resp.MovieInfoResult.MovieInfo
	rec.Cast = domain.CleanList(names(info.Actors))
	if len(rec.Directors) == 0 {
		rec.Directors = domain.CleanList(names(info.Directors))
	}
	if len(rec.Companies) == 0 {
		rec.Companies = domain.CleanList(companyNames(info.Companys))
	}
	if len(rec.Categories) == 0 {
		genres := make([]string, 0, len(info.Genres))
		for _, g := range info.Genres {
			genres = append(genres, g.GenreNm)
		}
		rec.Categories = domain.CleanList(genres)
	}
	if tm := strings.TrimSpace(info.ShowTm); tm != "" {
		if minutes, err := strconv.Atoi(tm); err == nil {
			rec.RunningTime = minutes
		} else {
			logger.Warn("kofic: invalid showTm %q for %s", tm, rec.DetailRef)
		}
	}
	return rec, nil
}

// Close marks the collector closed.
func (c *Collector) Close() error {
	c.closed.Store(true)
	return nil
}

func toSourceRecord(m movieItem) domain.SourceRecord {
	code := strings.TrimSpace(m.MovieCd)
	rec := domain.SourceRecord{
		SourceID:   domain.SourceKOFIC,
		Domain:     domain.DomainMovie,
		Code:       code,
		Title:      strings.TrimSpace(m.MovieNm),
		Directors:  domain.CleanList(names(m.Directors)),
		Companies:  domain.CleanList(companyNames(m.Companys)),
		Categories: domain.SplitList(m.GenreAlt, ","),
		DetailRef:  code,
	}
	if ms, ok := domain.ParseEpochMillis(m.OpenDt); ok {
		rec.OpeningTime = ms
	} else if m.OpenDt != "" {
		logger.Warn("kofic: unrecognised openDt %q for %s", m.OpenDt, code)
	}
	// Codes are assigned in registration order.
	if n, err := strconv.ParseInt(code, 10, 64); err == nil {
		rec.Recency = n
	}
	return rec
}
