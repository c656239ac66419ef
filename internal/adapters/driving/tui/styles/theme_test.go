package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()
	assert.Equal(t, lipgloss.Color("#7C3AED"), theme.Primary)
	assert.Equal(t, lipgloss.Color("#F38BA8"), theme.Error)
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)
	assert.Equal(t, DefaultTheme(), s.Theme())
	assert.True(t, s.Title.GetBold())
}

func TestNewStyles_CustomTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Primary = lipgloss.Color("#FF0000")

	s := NewStyles(theme)

	assert.Same(t, theme, s.Theme())
	assert.Equal(t, lipgloss.Color("#FF0000"), s.Title.GetForeground())
	assert.Equal(t, lipgloss.Color("#FF0000"), s.Selected.GetBackground())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()
	assert.Contains(t, s.Normal.Render("파묘"), "파묘")
	assert.Contains(t, s.Label.Render("Code"), "Code")
}
