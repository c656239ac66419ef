package domain

import "time"

// IdentityPolicy selects how the identity matcher breaks ties between
// catalog entries sharing a title.
type IdentityPolicy string

// Identity policies.
const (
	// IdentityFirstMatch accepts the first entry with any director overlap.
	IdentityFirstMatch IdentityPolicy = "first"

	// IdentityBestMatch accepts the entry with the largest director overlap.
	IdentityBestMatch IdentityPolicy = "best"
)

// IsValid returns true if the policy is recognised.
func (p IdentityPolicy) IsValid() bool {
	return p == IdentityFirstMatch || p == IdentityBestMatch
}

// String returns the string representation.
func (p IdentityPolicy) String() string {
	return string(p)
}

// DefaultMaxPages is the safety ceiling on pages fetched per source.
const DefaultMaxPages = 3000

// IngestConfig is the typed view of the configuration file.
type IngestConfig struct {
	// DataDir holds the database and the run lock.
	DataDir string

	Crawl     CrawlSettings
	Identity  IdentityPolicy
	RateLimit RateLimitSettings
	KOFIC     KOFICSettings
	KOPIS     KOPISSettings

	// Feeds holds the ticketing feeds keyed by source ID.
	Feeds map[string]FeedSettings

	Notify    NotifySettings
	Scheduler SchedulerConfig

	// MetricsAddr is the listen address for /metrics in serve mode.
	MetricsAddr string
}

// CrawlSettings bounds a paginated crawl.
type CrawlSettings struct {
	// MaxPages is the hard page ceiling per source.
	MaxPages int

	// DetailWorkers bounds parallel detail fetches. 1 means sequential.
	DetailWorkers int
}

// RateLimitSettings configures the shared HTTP throttle.
type RateLimitSettings struct {
	RequestsPerSecond float64
	Burst             int
}

// KOFICSettings configures the film catalog API.
type KOFICSettings struct {
	Enabled   bool
	ListURL   string
	DetailURL string
	APIKey    string
	PageSize  int

	// OpenStartYear filters the listing by release year (YYYY).
	OpenStartYear string
}

// KOPISSettings configures the performing-arts catalog API.
type KOPISSettings struct {
	Enabled   bool
	URL       string
	APIKey    string
	PageSize  int
	StartDate string
	EndDate   string
}

// FeedSettings configures one ticketing venue feed.
type FeedSettings struct {
	Enabled bool

	// Location is an http(s) URL or a local file path.
	Location string

	PageSize int
}

// NotifySettings configures run notifications.
type NotifySettings struct {
	DiscordWebhook string
	Timeout        time.Duration
}

// DefaultIngestConfig returns sensible defaults.
func DefaultIngestConfig() IngestConfig {
	now := time.Now().UTC()
	return IngestConfig{
		Crawl: CrawlSettings{
			MaxPages:      DefaultMaxPages,
			DetailWorkers: 1,
		},
		Identity: IdentityFirstMatch,
		RateLimit: RateLimitSettings{
			RequestsPerSecond: 5.0,
			Burst:             5,
		},
		KOFIC: KOFICSettings{
			ListURL:       "https://www.kobis.or.kr/kobisopenapi/webservice/rest/movie/searchMovieList.json",
			DetailURL:     "https://www.kobis.or.kr/kobisopenapi/webservice/rest/movie/searchMovieInfo.json",
			PageSize:      10,
			OpenStartYear: now.AddDate(-1, 0, 0).Format("2006"),
		},
		KOPIS: KOPISSettings{
			URL:       "http://www.kopis.or.kr/openApi/restful/pblprfr",
			PageSize:  100,
			StartDate: time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC).Format("20060102"),
			EndDate:   "29991231",
		},
		Feeds: map[string]FeedSettings{},
		Notify: NotifySettings{
			Timeout: 10 * time.Second,
		},
		Scheduler:   DefaultSchedulerConfig(),
		MetricsAddr: ":9464",
	}
}

// ReservationSlotFor returns the reservation slot owned by a source.
func ReservationSlotFor(sourceID string) int {
	switch sourceID {
	case SourceMegabox:
		return SlotMegabox
	case SourceCGV:
		return SlotCGV
	case SourceLotte:
		return SlotLotte
	default:
		return NoSlot
	}
}
