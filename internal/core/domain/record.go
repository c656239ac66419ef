package domain

import (
	"strings"
	"time"
)

// Domain is the level-one category of an event.
type Domain string

// Level-one categories.
const (
	// DomainMovie covers films listed by the film catalog and cinemas.
	DomainMovie Domain = "MOVIE"

	// DomainPerformingArts covers stage performances.
	DomainPerformingArts Domain = "PERFORMING_ARTS"
)

// IsValid returns true if the domain is recognised.
func (d Domain) IsValid() bool {
	switch d {
	case DomainMovie, DomainPerformingArts:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Domain) String() string {
	return string(d)
}

// Reservation slots. Each ticketing source owns one position in
// CanonicalRecord.ReservationLinks.
const (
	SlotMegabox = 0
	SlotCGV     = 1
	SlotLotte   = 2

	// ReservationSlotCount is the fixed length of the reservation link array.
	ReservationSlotCount = 3

	// NoSlot marks a source without a reservation link (catalog sources).
	NoSlot = -1
)

// PlotUnavailable is stored when a source has no synopsis.
// The merge policy treats it the same as a blank plot.
const PlotUnavailable = "No information"

// CategoryRef is a level-two category attached to a record.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CanonicalRecord is the reconciled representation of one cultural event.
// It is identified by Code when the film catalog knows it, otherwise by
// TitleKey.
type CanonicalRecord struct {
	// ID is the store identifier.
	ID string

	// Code is the authoritative catalog code. Empty when unknown.
	Code string

	// Title is the display title.
	Title string

	// TitleKey is the normalised title used for codeless identity.
	TitleKey string

	// OpeningTime and ClosingTime are epoch milliseconds (0 = unknown).
	OpeningTime int64
	ClosingTime int64

	Directors []string
	Cast      []string
	Companies []string

	// ReservationLinks has ReservationSlotCount positions; blank means absent.
	ReservationLinks []string

	Poster string
	Plot   string

	Domain     Domain
	Categories []CategoryRef

	// RunningTime is in minutes.
	RunningTime int

	Venue string
	Area  string

	// SourceID is the source that first produced the record.
	SourceID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the identity key used for deduplication: the code when
// present, the title key otherwise.
func (r *CanonicalRecord) Key() string {
	if r.Code != "" {
		return "code:" + r.Code
	}
	return "title:" + r.TitleKey
}

// NewReservationLinks returns an empty link array with the link for slot set.
// An out-of-range slot yields an all-blank array.
func NewReservationLinks(slot int, url string) []string {
	links := make([]string, ReservationSlotCount)
	if slot >= 0 && slot < ReservationSlotCount {
		links[slot] = strings.TrimSpace(url)
	}
	return links
}

// RecordPatch is a partial merge document. Nil fields are left untouched.
type RecordPatch struct {
	ReservationLinks []string
	Poster           *string
	Plot             *string
}

// IsEmpty reports whether the patch changes nothing.
func (p RecordPatch) IsEmpty() bool {
	return p.ReservationLinks == nil && p.Poster == nil && p.Plot == nil
}

// Fields lists the names of the fields the patch sets, for logging.
func (p RecordPatch) Fields() []string {
	var fields []string
	if p.ReservationLinks != nil {
		fields = append(fields, "reservationLinks")
	}
	if p.Poster != nil {
		fields = append(fields, "poster")
	}
	if p.Plot != nil {
		fields = append(fields, "plot")
	}
	return fields
}

// Apply writes the patch onto a record.
func (p RecordPatch) Apply(r *CanonicalRecord) {
	if p.ReservationLinks != nil {
		r.ReservationLinks = append([]string(nil), p.ReservationLinks...)
	}
	if p.Poster != nil {
		r.Poster = *p.Poster
	}
	if p.Plot != nil {
		r.Plot = *p.Plot
	}
}

// IsBlankPlot reports whether a plot carries no information.
func IsBlankPlot(plot string) bool {
	p := strings.TrimSpace(plot)
	return p == "" || p == PlotUnavailable
}
