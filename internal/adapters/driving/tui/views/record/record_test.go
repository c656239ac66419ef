package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/keymap"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/styles"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

func TestView_Empty(t *testing.T) {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap())
	assert.Nil(t, v.Record())
	assert.Contains(t, v.View(), "No record selected.")
}

func TestView_SetRecord(t *testing.T) {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap())
	v.SetDimensions(120, 40)

	v.SetRecord(domain.CanonicalRecord{
		Title:            "파묘",
		Code:             "20231234",
		Domain:           domain.DomainMovie,
		OpeningTime:      1708560000000,
		Directors:        []string{"장재현"},
		Categories:       []domain.CategoryRef{{ID: "c1", Name: "미스터리"}},
		RunningTime:      134,
		ReservationLinks: []string{"", "https://cgv.example/1", ""},
		Plot:             domain.PlotUnavailable,
	})

	require.NotNil(t, v.Record())
	view := v.View()
	assert.Contains(t, view, "파묘")
	assert.Contains(t, view, "20231234")
	assert.Contains(t, view, "2024.02.22")
	assert.Contains(t, view, "장재현")
	assert.Contains(t, view, "미스터리")
	assert.Contains(t, view, "134 min")
	assert.Contains(t, view, "CGV")
	assert.Contains(t, view, "https://cgv.example/1")
	assert.NotContains(t, view, "Megabox")
	assert.NotContains(t, view, domain.PlotUnavailable)
	assert.Contains(t, view, "esc back")
}

func TestView_ShowsPlot(t *testing.T) {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap())
	v.SetDimensions(120, 40)

	v.SetRecord(domain.CanonicalRecord{Title: "Wonka", Plot: "A chocolatier's early days."})

	assert.Contains(t, v.View(), "A chocolatier's early days.")
}
