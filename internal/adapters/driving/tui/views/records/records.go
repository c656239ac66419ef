// Package records provides the paged records list view for the TUI.
package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/keymap"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/messages"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/styles"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

// DefaultPageSize is the number of records per page.
const DefaultPageSize = 20

// View is the records list view.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.RecordService
	ctx     context.Context

	records  []domain.CanonicalRecord
	offset   int
	total    int
	pageSize int
	selected int

	width   int
	height  int
	loading bool
	status  string
	err     error
}

// NewView creates a records view.
func NewView(s *styles.Styles, keys *keymap.KeyMap, service driving.RecordService) *View {
	return &View{
		styles:   s,
		keys:     keys,
		service:  service,
		ctx:      context.Background(),
		pageSize: DefaultPageSize,
	}
}

// WithContext sets the context used for store calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the first page.
func (v *View) Init() tea.Cmd {
	return v.load(0)
}

// Reload reloads the current page.
func (v *View) Reload() tea.Cmd {
	return v.load(v.offset)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// SetStatus sets the status line shown under the list.
func (v *View) SetStatus(status string) {
	v.status = status
}

func (v *View) load(offset int) tea.Cmd {
	v.loading = true
	ctx, svc, size := v.ctx, v.service, v.pageSize
	return func() tea.Msg {
		recs, err := svc.List(ctx, size, offset)
		if err != nil {
			return messages.RecordsLoaded{Offset: offset, Err: err}
		}
		total, err := svc.Count(ctx)
		return messages.RecordsLoaded{Records: recs, Offset: offset, Total: total, Err: err}
	}
}

// Update handles messages for the records view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.RecordsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.records = msg.Records
			v.offset = msg.Offset
			v.total = msg.Total
			v.selected = min(v.selected, max(len(v.records)-1, 0))
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keys.Down):
		if v.selected < len(v.records)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keys.Select):
		if v.selected < len(v.records) {
			rec := v.records[v.selected]
			return v, func() tea.Msg { return messages.RecordSelected{Record: rec} }
		}
	case key.Matches(msg, v.keys.NextPage):
		if !v.loading && v.offset+v.pageSize < v.total {
			v.selected = 0
			return v, v.load(v.offset + v.pageSize)
		}
	case key.Matches(msg, v.keys.PrevPage):
		if !v.loading && v.offset > 0 {
			v.selected = 0
			return v, v.load(max(v.offset-v.pageSize, 0))
		}
	case key.Matches(msg, v.keys.Refresh):
		return v, v.Reload()
	}
	return v, nil
}

// View renders the list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("knock records"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.loading && len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("No records yet. Press R to run ingestion."))
		b.WriteString("\n")
	default:
		for i := range v.records {
			line := v.row(&v.records[i])
			if i == v.selected {
				b.WriteString(v.styles.Selected.Render("> " + line))
			} else {
				b.WriteString(v.styles.Normal.Render("  " + line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d-%d of %d",
			v.offset+1, v.offset+len(v.records), v.total)))
		b.WriteString("\n")
	}

	if v.status != "" {
		b.WriteString(v.styles.StatusBar.Render(v.status))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.ListHelp())))
	return b.String()
}

func (v *View) row(r *domain.CanonicalRecord) string {
	kind := "movie"
	if r.Domain == domain.DomainPerformingArts {
		kind = "stage"
	}
	return fmt.Sprintf("%-10s  %-5s  %s", domain.FormatEpochMillis(r.OpeningTime), kind, r.Title)
}

// Selected returns the highlighted record, if any.
func (v *View) Selected() (domain.CanonicalRecord, bool) {
	if v.selected < len(v.records) {
		return v.records[v.selected], true
	}
	return domain.CanonicalRecord{}, false
}

// Offset returns the offset of the current page.
func (v *View) Offset() int { return v.offset }

// Err returns the last load error.
func (v *View) Err() error { return v.err }
