package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/keymap"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/messages"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/styles"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/views/record"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui/views/records"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

// App is the record browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	recordsView *records.View
	recordView  *record.View

	currentView messages.ViewType

	// running is set while an ingestion pass started from the TUI is active.
	running bool

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	keys := keymap.DefaultKeyMap()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keys:        keys,
		recordsView: records.NewView(s, keys, ports.Records),
		recordView:  record.NewView(s, keys),
		currentView: messages.ViewRecords,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.recordsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("knock"),
		a.recordsView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.RecordsLoaded:
		a.err = msg.Err
		a.recordsView, cmd = a.recordsView.Update(msg)
		return a, cmd

	case messages.RecordSelected:
		a.recordView.SetRecord(msg.Record)
		a.currentView = messages.ViewRecord
		return a, nil

	case messages.RunCompleted:
		a.running = false
		a.recordsView.SetStatus(runStatus(msg))
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		return a, a.recordsView.Reload()

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewRecord:
		switch {
		case key.Matches(msg, a.keys.Back):
			a.currentView = messages.ViewRecords
			return a, nil
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		}
		a.recordView, cmd = a.recordView.Update(msg)
		return a, cmd

	default:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Run):
			return a, a.startRun()
		}
		a.recordsView, cmd = a.recordsView.Update(msg)
		return a, cmd
	}
}

// startRun runs one ingestion pass in the background.
func (a *App) startRun() tea.Cmd {
	if a.ports.Ingestion == nil || a.running {
		return nil
	}
	a.running = true
	a.recordsView.SetStatus("Running ingestion...")

	ctx, ingest := a.ctx, a.ports.Ingestion
	return func() tea.Msg {
		report, err := ingest.RunOnce(ctx)
		return messages.RunCompleted{Report: report, Err: err}
	}
}

func runStatus(msg messages.RunCompleted) string {
	switch {
	case errors.Is(msg.Err, domain.ErrRunInProgress):
		return "Another ingestion pass is running."
	case msg.Err != nil:
		return "Ingestion failed: " + msg.Err.Error()
	case msg.Report == nil:
		return "Ingestion finished."
	}
	status := fmt.Sprintf("Ingestion finished: %d records", msg.Report.Produced())
	if failed := msg.Report.FailedSources(); len(failed) > 0 {
		status += fmt.Sprintf(", %d sources failed", len(failed))
	}
	return status
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.currentView == messages.ViewRecord {
		return a.recordView.View()
	}
	return a.recordsView.View()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// Running reports whether an ingestion pass started here is active.
func (a *App) Running() bool {
	return a.running
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.recordsView.SetDimensions(width, height)
	a.recordView.SetDimensions(width, height)
}
