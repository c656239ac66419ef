package connectors

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/keaunsolNa/knock-crawling/internal/connectors/feed"
	"github.com/keaunsolNa/knock-crawling/internal/connectors/kofic"
	"github.com/keaunsolNa/knock-crawling/internal/connectors/kopis"
	"github.com/keaunsolNa/knock-crawling/internal/connectors/ratelimit"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.CollectorFactory = (*Registry)(nil)

// ConfigSource returns the current configuration.
type ConfigSource func() (*domain.IngestConfig, error)

// Registry builds the enabled collectors in domain.SourceOrder.
// All collectors built by one Registry share a single rate limiter.
type Registry struct {
	config     ConfigSource
	httpClient *http.Client

	mu       sync.Mutex
	limiter  *ratelimit.Limiter
	limitCfg ratelimit.Config
}

// NewRegistry creates a registry. A nil httpClient uses the rate limit
// client's default.
func NewRegistry(config ConfigSource, httpClient *http.Client) *Registry {
	return &Registry{config: config, httpClient: httpClient}
}

// Build returns the collectors enabled by the current configuration.
// Sources that are enabled but not usable (no API key, no feed location)
// are skipped with a warning.
func (r *Registry) Build(_ context.Context) ([]driven.SourceCollector, error) {
	cfg, err := r.config()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	client := ratelimit.NewClient(r.sharedLimiter(cfg.RateLimit), r.httpClient)

	var collectors []driven.SourceCollector //nolint:prealloc // size depends on configuration
	for _, id := range domain.SourceOrder {
		c := buildOne(id, cfg, client)
		if c != nil {
			collectors = append(collectors, c)
		}
	}
	return collectors, nil
}

// Limiter returns the limiter shared by the last build, or nil before the
// first build.
func (r *Registry) Limiter() *ratelimit.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limiter
}

// sharedLimiter keeps the limiter across builds unless the settings change,
// so a 429 backoff outlives a single pass.
func (r *Registry) sharedLimiter(settings domain.RateLimitSettings) *ratelimit.Limiter {
	want := ratelimit.Config{RequestsPerSecond: settings.RequestsPerSecond, Burst: settings.Burst}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limiter == nil || r.limitCfg != want {
		r.limiter = ratelimit.New(want)
		r.limitCfg = want
	}
	return r.limiter
}

func buildOne(id string, cfg *domain.IngestConfig, client *ratelimit.Client) driven.SourceCollector {
	switch id {
	case domain.SourceKOFIC:
		if !cfg.KOFIC.Enabled {
			return nil
		}
		if cfg.KOFIC.APIKey == "" {
			logger.Warn("kofic: enabled but no API key configured, skipping")
			return nil
		}
		return kofic.New(cfg.KOFIC, client)

	case domain.SourceKOPIS:
		if !cfg.KOPIS.Enabled {
			return nil
		}
		if cfg.KOPIS.APIKey == "" {
			logger.Warn("kopis: enabled but no API key configured, skipping")
			return nil
		}
		return kopis.New(cfg.KOPIS, client)

	default:
		settings, ok := cfg.Feeds[id]
		if !ok || !settings.Enabled {
			return nil
		}
		if settings.Location == "" {
			logger.Warn("%s: enabled but no feed location configured, skipping", id)
			return nil
		}
		return feed.New(id, settings, client)
	}
}
