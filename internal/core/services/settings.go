package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir         = "data_dir"
	keyMaxPages        = "crawl.max_pages"
	keyDetailWorkers   = "crawl.detail_workers"
	keyIdentityPolicy  = "identity.policy"
	keyRateLimitRPS    = "rate_limit.requests_per_second"
	keyRateLimitBurst  = "rate_limit.burst"
	keyKOFICEnabled    = "sources.kofic.enabled"
	keyKOFICListURL    = "sources.kofic.list_url"
	keyKOFICDetailURL  = "sources.kofic.detail_url"
	keyKOFICAPIKey     = "sources.kofic.api_key"
	keyKOFICPageSize   = "sources.kofic.page_size"
	keyKOFICOpenYear   = "sources.kofic.open_start_year"
	keyKOPISEnabled    = "sources.kopis.enabled"
	keyKOPISURL        = "sources.kopis.url"
	keyKOPISAPIKey     = "sources.kopis.api_key"
	keyKOPISPageSize   = "sources.kopis.page_size"
	keyKOPISStartDate  = "sources.kopis.start_date"
	keyKOPISEndDate    = "sources.kopis.end_date"
	keyDiscordWebhook  = "notify.discord_webhook"
	keyNotifyTimeout   = "notify.timeout"
	keySchedEnabled    = "scheduler.enabled"
	keySchedIngestOn   = "scheduler.ingestion.enabled"
	keySchedIngestTick = "scheduler.ingestion.interval"
	keyMetricsAddr     = "metrics.addr"
)

// Environment overrides. Values from the environment win over the file.
const (
	EnvKOFICAPIKey    = "KOFIC_API_KEY"
	EnvKOPISAPIKey    = "KOPIS_API_KEY"
	EnvDiscordWebhook = "DISCORD_WEBHOOK_URL"
	EnvDataDir        = "KNOCK_DATA_DIR"
)

// feedSources are the venue feeds configurable under sources.<id>.
var feedSources = []string{domain.SourceMegabox, domain.SourceCGV, domain.SourceLotte}

// knownKeys are the keys accepted by Set.
var knownKeys = map[string]struct{}{
	keyDataDir: {}, keyMaxPages: {}, keyDetailWorkers: {}, keyIdentityPolicy: {},
	keyRateLimitRPS: {}, keyRateLimitBurst: {},
	keyKOFICEnabled: {}, keyKOFICListURL: {}, keyKOFICDetailURL: {}, keyKOFICAPIKey: {},
	keyKOFICPageSize: {}, keyKOFICOpenYear: {},
	keyKOPISEnabled: {}, keyKOPISURL: {}, keyKOPISAPIKey: {}, keyKOPISPageSize: {},
	keyKOPISStartDate: {}, keyKOPISEndDate: {},
	keyDiscordWebhook: {}, keyNotifyTimeout: {},
	keySchedEnabled: {}, keySchedIngestOn: {}, keySchedIngestTick: {},
	keyMetricsAddr: {},
}

// keyKind is the stored type of a config key. Keys not listed are strings.
type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
	kindFloat
)

var keyKinds = map[string]keyKind{
	keyMaxPages: kindInt, keyDetailWorkers: kindInt, keyRateLimitBurst: kindInt,
	keyKOFICPageSize: kindInt, keyKOPISPageSize: kindInt,
	keyRateLimitRPS: kindFloat,
	keyKOFICEnabled: kindBool, keyKOPISEnabled: kindBool,
	keySchedEnabled: kindBool, keySchedIngestOn: kindBool,
}

func init() {
	for _, id := range feedSources {
		for _, field := range []string{"enabled", "location", "page_size"} {
			knownKeys["sources."+id+"."+field] = struct{}{}
		}
		keyKinds["sources."+id+".enabled"] = kindBool
		keyKinds["sources."+id+".page_size"] = kindInt
	}
}

// SettingsService builds the typed ingestion configuration from the config
// store and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a settings service that reads overrides from
// the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return NewSettingsServiceWithEnv(configStore, os.Getenv)
}

// NewSettingsServiceWithEnv creates a settings service with a custom
// environment lookup.
func NewSettingsServiceWithEnv(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &SettingsService{configStore: configStore, getenv: getenv}
}

// Get returns the current configuration.
func (s *SettingsService) Get() (*domain.IngestConfig, error) {
	d := domain.DefaultIngestConfig()

	cfg := &domain.IngestConfig{
		DataDir: s.override(EnvDataDir, s.getString(keyDataDir, d.DataDir)),
		Crawl: domain.CrawlSettings{
			MaxPages:      s.getInt(keyMaxPages, d.Crawl.MaxPages),
			DetailWorkers: s.getInt(keyDetailWorkers, d.Crawl.DetailWorkers),
		},
		Identity: s.getPolicy(d.Identity),
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRateLimitRPS, d.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(keyRateLimitBurst, d.RateLimit.Burst),
		},
		KOFIC: domain.KOFICSettings{
			Enabled:       s.getBool(keyKOFICEnabled, true),
			ListURL:       s.getString(keyKOFICListURL, d.KOFIC.ListURL),
			DetailURL:     s.getString(keyKOFICDetailURL, d.KOFIC.DetailURL),
			APIKey:        s.override(EnvKOFICAPIKey, s.configStore.GetString(keyKOFICAPIKey)),
			PageSize:      s.getInt(keyKOFICPageSize, d.KOFIC.PageSize),
			OpenStartYear: s.getString(keyKOFICOpenYear, d.KOFIC.OpenStartYear),
		},
		KOPIS: domain.KOPISSettings{
			Enabled:   s.getBool(keyKOPISEnabled, true),
			URL:       s.getString(keyKOPISURL, d.KOPIS.URL),
			APIKey:    s.override(EnvKOPISAPIKey, s.configStore.GetString(keyKOPISAPIKey)),
			PageSize:  s.getInt(keyKOPISPageSize, d.KOPIS.PageSize),
			StartDate: s.getString(keyKOPISStartDate, d.KOPIS.StartDate),
			EndDate:   s.getString(keyKOPISEndDate, d.KOPIS.EndDate),
		},
		Feeds: make(map[string]domain.FeedSettings),
		Notify: domain.NotifySettings{
			DiscordWebhook: s.override(EnvDiscordWebhook, s.configStore.GetString(keyDiscordWebhook)),
			Timeout:        s.getDuration(keyNotifyTimeout, d.Notify.Timeout),
		},
		Scheduler:   s.getSchedulerConfig(),
		MetricsAddr: s.getString(keyMetricsAddr, d.MetricsAddr),
	}

	for _, id := range feedSources {
		prefix := "sources." + id + "."
		location := s.configStore.GetString(prefix + "location")
		if location == "" {
			continue
		}
		cfg.Feeds[id] = domain.FeedSettings{
			Enabled:  s.getBool(prefix+"enabled", true),
			Location: location,
			PageSize: s.configStore.GetInt(prefix + "page_size"),
		}
	}

	if cfg.Crawl.MaxPages < 1 {
		return nil, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyMaxPages)
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyRateLimitRPS)
	}
	return cfg, nil
}

// Set stores a single configuration key. Unknown keys are rejected.
// String values are converted to the key's type, so "500" is stored as an
// integer for crawl.max_pages while an API key of "0123" stays text.
func (s *SettingsService) Set(key string, value any) error {
	key = strings.TrimSpace(key)
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	value, err := coerce(keyKinds[key], value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	if key == keyIdentityPolicy {
		if p := domain.IdentityPolicy(fmt.Sprint(value)); !p.IsValid() {
			return fmt.Errorf("%w: identity policy %q", domain.ErrInvalidInput, value)
		}
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// coerce converts value to kind. Strings are parsed; other values must
// already have a compatible type.
func coerce(kind keyKind, value any) (any, error) {
	str, isString := value.(string)
	str = strings.TrimSpace(str)

	switch kind {
	case kindBool:
		if isString {
			return strconv.ParseBool(str)
		}
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case kindInt:
		if isString {
			return strconv.ParseInt(str, 10, 64)
		}
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		}
	case kindFloat:
		if isString {
			return strconv.ParseFloat(str, 64)
		}
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	default:
		if isString {
			return str, nil
		}
		return fmt.Sprint(value), nil
	}
	return nil, fmt.Errorf("unexpected %T", value)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) override(env, val string) string {
	if v := strings.TrimSpace(s.getenv(env)); v != "" {
		return v
	}
	return val
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getPolicy(defaultVal domain.IdentityPolicy) domain.IdentityPolicy {
	p := domain.IdentityPolicy(s.configStore.GetString(keyIdentityPolicy))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

// getSchedulerConfig returns the scheduler configuration.
func (s *SettingsService) getSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	defaults.Enabled = s.getBool(keySchedEnabled, defaults.Enabled)

	taskCfg := defaults.TaskConfigs[domain.TaskIDIngestion]
	taskCfg.Enabled = s.getBool(keySchedIngestOn, taskCfg.Enabled)
	taskCfg.Interval = s.getDuration(keySchedIngestTick, taskCfg.Interval)
	defaults.TaskConfigs[domain.TaskIDIngestion] = taskCfg

	return defaults
}
