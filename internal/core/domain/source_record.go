package domain

// Source identifiers in run order.
const (
	SourceKOFIC   = "kofic"
	SourceKOPIS   = "kopis"
	SourceMegabox = "megabox"
	SourceCGV     = "cgv"
	SourceLotte   = "lotte"
)

// SourceOrder is the fixed order in which sources run within a pass.
// Ticketing feeds come after the catalogs so their identity matching and
// duplicate detection see the catalog writes.
var SourceOrder = []string{SourceKOFIC, SourceKOPIS, SourceMegabox, SourceCGV, SourceLotte}

// SourceRecord is one normalised item yielded by a collector.
// It is consumed into a write candidate and discarded.
type SourceRecord struct {
	SourceID string
	Domain   Domain

	// Code is the authoritative code when the source knows it.
	Code string

	Title       string
	OpeningTime int64
	ClosingTime int64
	Directors   []string
	Cast        []string
	Companies   []string

	ReservationURL string

	// Categories are raw level-two category names.
	Categories []string

	RunningTime int
	Plot        string
	Poster      string
	Venue       string
	Area        string

	// DetailRef is a collector-private handle used to fetch detail data.
	DetailRef string

	// Recency is an ordering key where larger means newer. Zero is unknown.
	Recency int64
}

// Label returns a short identifier for log lines.
func (s *SourceRecord) Label() string {
	if s.Code != "" {
		return s.Title + " (" + s.Code + ")"
	}
	return s.Title
}
