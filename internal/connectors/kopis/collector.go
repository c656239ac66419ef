// Package kopis collects stage performances from the government
// performing-arts catalog API (XML).
package kopis

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
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
const DefaultPageSize = 100

type dbs struct {
	Items []performance `xml:"db"`
}

type performance struct {
	ID       string `xml:"mt20id"`
	Name     string `xml:"prfnm"`
	From     string `xml:"prfpdfrom"`
	To       string `xml:"prfpdto"`
	Facility string `xml:"fcltynm"`
	Poster   string `xml:"poster"`
	Area     string `xml:"area"`
	Genre    string `xml:"genrenm"`
	Cast     string `xml:"prfcast"`
	Crew     string `xml:"prfcrew"`
	Runtime  string `xml:"prfruntime"`
	Company  string `xml:"entrpsnm"`
	Synopsis string `xml:"sty"`
}

// Collector reads the performance list and per-performance detail.
type Collector struct {
	cfg    domain.KOPISSettings
	client *ratelimit.Client
	closed atomic.Bool
}

// New creates a collector.
func New(cfg domain.KOPISSettings, client *ratelimit.Client) *Collector {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Collector{cfg: cfg, client: client}
}

// Name returns the source identifier.
func (c *Collector) Name() string { return domain.SourceKOPIS }

// Domain returns PERFORMING_ARTS.
func (c *Collector) Domain() domain.Domain { return domain.DomainPerformingArts }

// ReservationSlot returns domain.NoSlot.
func (c *Collector) ReservationSlot() int { return domain.NoSlot }

// PageSize returns the configured rows per page.
func (c *Collector) PageSize() int { return c.cfg.PageSize }

// FetchPage fetches the listing page at cursor, a one-based page number.
func (c *Collector) FetchPage(ctx context.Context, cursor string) (driven.Page, error) {
	if c.closed.Load() {
		return driven.Page{}, domain.ErrCollectorClosed
	}

	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return driven.Page{}, fmt.Errorf("kopis: invalid cursor %q: %w", cursor, domain.ErrInvalidInput)
		}
		page = n
	}

	body, err := c.client.Get(ctx, c.cfg.URL, url.Values{
		"service": {c.cfg.APIKey},
		"stdate":  {c.cfg.StartDate},
		"eddate":  {c.cfg.EndDate},
		"cpage":   {strconv.Itoa(page)},
		"rows":    {strconv.Itoa(c.cfg.PageSize)},
	})
	if err != nil {
		return driven.Page{}, fmt.Errorf("kopis list: %w", err)
	}

	var resp dbs
	if err := xml.Unmarshal(body, &resp); err != nil {
		return driven.Page{}, fmt.Errorf("kopis list: decode: %w: %w", domain.ErrSourceUnavailable, err)
	}

	items := make([]domain.SourceRecord, 0, len(resp.Items))
	for _, p := range resp.Items {
		items = append(items, toSourceRecord(p))
	}
	return driven.Page{Items: items, Next: strconv.Itoa(page + 1)}, nil
}

// Detail adds cast, crew, company, running time, synopsis and poster.
func (c *Collector) Detail(ctx context.Context, rec domain.SourceRecord) (domain.SourceRecord, error) {
	if rec.DetailRef == "" {
		return rec, nil
	}

	body, err := c.client.Get(ctx, c.cfg.URL+"/"+url.PathEscape(rec.DetailRef), url.Values{
		"service": {c.cfg.APIKey},
	})
	if err != nil {
		return rec, fmt.Errorf("kopis detail %s: %w", rec.DetailRef, err)
	}

	var resp dbs
	if err := xml.Unmarshal(body, &resp); err != nil {
		return rec, fmt.Errorf("kopis detail %s: decode: %w: %w", rec.DetailRef, domain.ErrSourceUnavailable, err)
	}
	if len(resp.Items) == 0 {
		return rec, fmt.Errorf("kopis detail %s: empty response: %w", rec.DetailRef, domain.ErrSourceUnavailable)
	}

	d := resp.Items[0]
	if cast := splitPeople(d.Cast); len(cast) > 0 {
		rec.Cast = cast
	}
	if crew := splitPeople(d.Crew); len(crew) > 0 {
		rec.Directors = crew
	}
	if company := strings.TrimSpace(d.Company); company != "" {
		rec.Companies = []string{company}
	}
	if runtime := strings.TrimSpace(d.Runtime); runtime != "" {
		rec.RunningTime = ParseRuntime(runtime)
	}
	if plot := html.Text(d.Synopsis); plot != "" {
		rec.Plot = plot
	}
	if poster := strings.TrimSpace(d.Poster); poster != "" {
		rec.Poster = poster
	}
	return rec, nil
}

// Close marks the collector closed.
func (c *Collector) Close() error {
	c.closed.Store(true)
	return nil
}

func toSourceRecord(p performance) domain.SourceRecord {
	id := strings.TrimSpace(p.ID)
	rec := domain.SourceRecord{
		SourceID:  domain.SourceKOPIS,
		Domain:    domain.DomainPerformingArts,
		Code:      id,
		Title:     strings.TrimSpace(p.Name),
		Cast:      splitPeople(p.Cast),
		Directors: splitPeople(p.Crew),
		Poster:    strings.TrimSpace(p.Poster),
		Venue:     strings.TrimSpace(p.Facility),
		Area:      strings.TrimSpace(p.Area),
		DetailRef: id,
	}
	if genre := strings.TrimSpace(p.Genre); genre != "" {
		rec.Categories = []string{strings.ToUpper(genre)}
	}
	rec.OpeningTime = parseDate(p.From, "prfpdfrom", id)
	rec.ClosingTime = parseDate(p.To, "prfpdto", id)
	return rec
}

func parseDate(value, field, id string) int64 {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	ms, ok := domain.ParseEpochMillis(value)
	if !ok {
		logger.Warn("kopis: unrecognised %s %q for %s", field, value, id)
	}
	return ms
}

// splitPeople splits a comma-separated credit list and drops the trailing
// "등" (et al.) marker.
func splitPeople(s string) []string {
	people := domain.SplitList(s, ",")
	if n := len(people); n > 0 {
		people[n-1] = strings.TrimSpace(strings.TrimSuffix(people[n-1], " 등"))
		if people[n-1] == "" || people[n-1] == "등" {
			people = people[:n-1]
		}
	}
	return people
}

var (
	hoursPattern   = regexp.MustCompile(`(\d+)\s*시간`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*분`)
)

// ParseRuntime converts "H시간 M분" (either part optional) to minutes.
// Unrecognised input yields 0.
func ParseRuntime(s string) int {
	total := 0
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		total += minutes
	}
	return total
}
