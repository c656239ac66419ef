package tui

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/messages"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

func sampleRecords(n int) []domain.CanonicalRecord {
	out := make([]domain.CanonicalRecord, n)
	for i := range out {
		out[i] = domain.CanonicalRecord{
			ID:     fmt.Sprintf("r%d", i),
			Title:  fmt.Sprintf("Film %d", i),
			Domain: domain.DomainMovie,
		}
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the app and returns the message produced by the
// resulting command, if any.
func send(t *testing.T, app *App, msg tea.Msg) tea.Msg {
	t.Helper()
	_, cmd := app.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func newLoadedApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	loaded := app.recordsView.Init()()
	send(t, app, loaded)
	return app
}

func TestNewApp_RequiresRecords(t *testing.T) {
	app, err := NewApp(&Ports{})
	require.Error(t, err)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingRecordService)
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{Ingestion: &mockIngestion{}}).Validate(), ErrMissingRecordService)
	assert.NoError(t, (&Ports{Records: &mockRecordService{}}).Validate())
}

func TestApp_InitialState(t *testing.T) {
	app, err := NewApp(&Ports{Records: &mockRecordService{}})
	require.NoError(t, err)

	assert.Equal(t, messages.ViewRecords, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
}

func TestApp_ListsRecords(t *testing.T) {
	app := newLoadedApp(t, &Ports{Records: &mockRecordService{records: sampleRecords(3)}})

	view := app.View()
	assert.Contains(t, view, "Film 0")
	assert.Contains(t, view, "Film 2")
	assert.Contains(t, view, "1-3 of 3")
}

func TestApp_EmptyStore(t *testing.T) {
	app := newLoadedApp(t, &Ports{Records: &mockRecordService{}})

	assert.Contains(t, app.View(), "No records yet")
}

func TestApp_LoadError(t *testing.T) {
	app := newLoadedApp(t, &Ports{Records: &mockRecordService{err: errors.New("db locked")}})

	assert.EqualError(t, app.Err(), "db locked")
	assert.Contains(t, app.View(), "Error: db locked")
}

func TestApp_OpenAndCloseRecord(t *testing.T) {
	app := newLoadedApp(t, &Ports{Records: &mockRecordService{records: sampleRecords(3)}})

	send(t, app, tea.KeyMsg{Type: tea.KeyDown})
	selected := send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.IsType(t, messages.RecordSelected{}, selected)
	send(t, app, selected)

	assert.Equal(t, messages.ViewRecord, app.CurrentView())
	assert.Contains(t, app.View(), "Film 1")

	send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewRecords, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newLoadedApp(t, &Ports{Records: &mockRecordService{}})

	assert.IsType(t, tea.QuitMsg{}, send(t, app, runes("q")))
	assert.IsType(t, tea.QuitMsg{}, send(t, app, tea.KeyMsg{Type: tea.KeyCtrlC}))
}

func TestApp_RunIngestion(t *testing.T) {
	ingest := &mockIngestion{report: &domain.RunReport{Sources: []domain.SourceReport{
		{SourceID: "kofic", Created: 4},
		{SourceID: "kopis", Err: domain.ErrSourceUnavailable},
	}}}
	store := &mockRecordService{}
	app := newLoadedApp(t, &Ports{Records: store, Ingestion: ingest})

	_, cmd := app.Update(runes("R"))
	require.NotNil(t, cmd)
	assert.True(t, app.Running())
	assert.Contains(t, app.View(), "Running ingestion...")

	_, again := app.Update(runes("R"))
	assert.Nil(t, again, "a second pass is not started while one runs")

	done := cmd()
	require.IsType(t, messages.RunCompleted{}, done)

	store.records = sampleRecords(4)
	reload := send(t, app, done)
	assert.False(t, app.Running())
	assert.Equal(t, 1, ingest.calls)

	send(t, app, reload)
	view := app.View()
	assert.Contains(t, view, "Ingestion finished: 4 records, 1 sources failed")
	assert.Contains(t, view, "Film 3")
}

func TestApp_RunWithoutIngestion(t *testing.T) {
	app := newLoadedApp(t, &Ports{Records: &mockRecordService{}})

	_, cmd := app.Update(runes("R"))

	assert.Nil(t, cmd)
	assert.False(t, app.Running())
}

func TestRunStatus(t *testing.T) {
	tests := []struct {
		name string
		msg  messages.RunCompleted
		want string
	}{
		{"in progress", messages.RunCompleted{Err: fmt.Errorf("lock: %w", domain.ErrRunInProgress)}, "Another ingestion pass is running."},
		{"failure", messages.RunCompleted{Err: errors.New("boom")}, "Ingestion failed: boom"},
		{"no report", messages.RunCompleted{}, "Ingestion finished."},
		{"clean run", messages.RunCompleted{Report: &domain.RunReport{Sources: []domain.SourceReport{{Merged: 2}}}}, "Ingestion finished: 2 records"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runStatus(tt.msg))
		})
	}
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newLoadedApp(t, &Ports{Records: &mockRecordService{}})

	send(t, app, messages.ErrorOccurred{Err: errors.New("bad")})

	assert.EqualError(t, app.Err(), "bad")
}
