// Package record provides the single record view for the TUI.
package record

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/keymap"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/styles"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// chrome is the number of lines used by the title and help.
const chrome = 4

var venueNames = [domain.ReservationSlotCount]string{"Megabox", "CGV", "Lotte"}

// View shows one record in a scrollable viewport.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	viewport viewport.Model
	record   *domain.CanonicalRecord
}

// NewView creates a record view.
func NewView(s *styles.Styles, keys *keymap.KeyMap) *View {
	return &View{
		styles:   s,
		keys:     keys,
		viewport: viewport.New(80, 20),
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-chrome, 1)
	if v.record != nil {
		v.viewport.SetContent(v.render())
	}
}

// SetRecord shows rec from the top.
func (v *View) SetRecord(rec domain.CanonicalRecord) {
	v.record = &rec
	v.viewport.SetContent(v.render())
	v.viewport.GotoTop()
}

// Record returns the record on display.
func (v *View) Record() *domain.CanonicalRecord {
	return v.record
}

// Update scrolls the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the record.
func (v *View) View() string {
	if v.record == nil {
		return v.styles.Muted.Render("No record selected.")
	}
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.record.Title))
	b.WriteString("\n\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.DetailHelp())))
	return b.String()
}

func (v *View) render() string {
	r := v.record
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(v.styles.Label.Render(label))
		b.WriteString(v.styles.Normal.Render(value))
		b.WriteString("\n")
	}

	field("Code", r.Code)
	field("Domain", r.Domain.String())
	field("Opening", domain.FormatEpochMillis(r.OpeningTime))
	if r.ClosingTime != 0 {
		field("Closing", domain.FormatEpochMillis(r.ClosingTime))
	}
	field("Directors", strings.Join(r.Directors, ", "))
	field("Cast", strings.Join(r.Cast, ", "))
	field("Companies", strings.Join(r.Companies, ", "))
	names := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		names = append(names, c.Name)
	}
	field("Categories", strings.Join(names, ", "))
	if r.RunningTime > 0 {
		field("Running", strconv.Itoa(r.RunningTime)+" min")
	}
	field("Venue", r.Venue)
	field("Area", r.Area)
	field("Poster", r.Poster)

	for slot, link := range r.ReservationLinks {
		if slot < len(venueNames) {
			field(venueNames[slot], link)
		}
	}

	if !domain.IsBlankPlot(r.Plot) {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(r.Plot))
		b.WriteString("\n")
	}
	return b.String()
}
