// Package metrics exports ingestion statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

const namespace = "knock"

// Ensure implementations satisfy the port.
var (
	_ driven.MetricsRecorder = (*Recorder)(nil)
	_ driven.MetricsRecorder = Noop{}
)

// Recorder keeps run statistics in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	records     *prometheus.CounterVec
	fetched     *prometheus.CounterVec
	malformed   *prometheus.CounterVec
	pages       *prometheus.CounterVec
	cutoffs     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	sourceDur   *prometheus.GaugeVec
	runs        *prometheus.CounterVec
	runDur      prometheus.Summary
	lastRunTS   prometheus.Gauge
	lastSuccess *prometheus.GaugeVec
}

// NewRecorder creates a recorder with every collector registered.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_total",
		Help:      "Records written by source and outcome",
	}, []string{"source", "outcome"})
	r.fetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_fetched_total",
		Help:      "Items kept by the crawl cutoff",
	}, []string{"source"})
	r.malformed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_malformed_total",
		Help:      "Items skipped because they could not be normalised",
	}, []string{"source"})
	r.pages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pages_fetched_total",
		Help:      "Listing pages fetched",
	}, []string{"source"})
	r.cutoffs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crawl_stops_total",
		Help:      "Crawl stops by reason",
	}, []string{"source", "reason"})
	r.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Aborted source runs",
	}, []string{"source"})
	r.sourceDur = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_duration_seconds",
		Help:      "Duration of the last run of each source",
	}, []string{"source"})
	r.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Ingestion passes by result",
	}, []string{"result"})
	r.runDur = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Time spent in a full ingestion pass",
	})
	r.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last finished pass",
	})
	r.lastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful run of each source",
	}, []string{"source"})

	r.registry.MustRegister(
		r.records, r.fetched, r.malformed, r.pages, r.cutoffs, r.failures,
		r.sourceDur, r.runs, r.runDur, r.lastRunTS, r.lastSuccess,
	)
	return r
}

// ObserveSource records the statistics of one source's run.
func (r *Recorder) ObserveSource(report domain.SourceReport) {
	src := report.SourceID
	r.records.WithLabelValues(src, domain.OutcomeCreated.String()).Add(float64(report.Created))
	r.records.WithLabelValues(src, domain.OutcomeMerged.String()).Add(float64(report.Merged))
	r.records.WithLabelValues(src, domain.OutcomeSkipped.String()).Add(float64(report.Skipped))
	r.records.WithLabelValues(src, domain.OutcomeFailed.String()).Add(float64(report.Failed))
	r.fetched.WithLabelValues(src).Add(float64(report.Fetched))
	r.malformed.WithLabelValues(src).Add(float64(report.Malformed))
	r.pages.WithLabelValues(src).Add(float64(report.Pages))

	if !report.EndedAt.IsZero() {
		r.sourceDur.WithLabelValues(src).Set(report.EndedAt.Sub(report.StartedAt).Seconds())
	}
	if report.Err != nil {
		r.failures.WithLabelValues(src).Inc()
		return
	}
	if report.Cutoff != domain.CutoffNone {
		r.cutoffs.WithLabelValues(src, string(report.Cutoff)).Inc()
	}
	if !report.EndedAt.IsZero() {
		r.lastSuccess.WithLabelValues(src).Set(float64(report.EndedAt.Unix()))
	}
}

// ObserveRun records the completion of a full pass.
func (r *Recorder) ObserveRun(report domain.RunReport) {
	result := "success"
	if len(report.FailedSources()) > 0 {
		result = "partial"
	}
	r.runs.WithLabelValues(result).Inc()
	r.runDur.Observe(report.Duration().Seconds())
	if !report.EndedAt.IsZero() {
		r.lastRunTS.Set(float64(report.EndedAt.Unix()))
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Noop discards every observation.
type Noop struct{}

// ObserveSource does nothing.
func (Noop) ObserveSource(domain.SourceReport) {}

// ObserveRun does nothing.
func (Noop) ObserveRun(domain.RunReport) {}
