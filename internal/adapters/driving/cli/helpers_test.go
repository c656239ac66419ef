package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

// ==================== Mocks ====================

type mockIngestion struct {
	report *domain.RunReport
	err    error
	calls  int
}

func (m *mockIngestion) RunOnce(_ context.Context) (*domain.RunReport, error) {
	m.calls++
	return m.report, m.err
}

func (m *mockIngestion) Status(_ context.Context) (*driving.RunStatus, error) {
	return &driving.RunStatus{}, nil
}

type mockRecords struct {
	records  []domain.CanonicalRecord
	imported []domain.AuthoritativeEntry
	err      error
}

func (m *mockRecords) List(_ context.Context, limit, offset int) ([]domain.CanonicalRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if offset >= len(m.records) {
		return nil, nil
	}
	end := min(offset+limit, len(m.records))
	return m.records[offset:end], nil
}

func (m *mockRecords) Get(_ context.Context, ref string) (*domain.CanonicalRecord, error) {
	for i := range m.records {
		r := m.records[i]
		if r.ID == ref || (r.Code != "" && r.Code == ref) || r.Title == ref {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecords) Count(_ context.Context) (int, error) {
	return len(m.records), nil
}

func (m *mockRecords) ImportAuthoritative(_ context.Context, entries []domain.AuthoritativeEntry) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.imported = append(m.imported, entries...)
	return len(entries), nil
}

type mockSettings struct {
	cfg    *domain.IngestConfig
	values map[string]any
	err    error
}

func newMockSettings() *mockSettings {
	cfg := domain.DefaultIngestConfig()
	return &mockSettings{cfg: &cfg, values: map[string]any{}}
}

func (m *mockSettings) Get() (*domain.IngestConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cfg, nil
}

func (m *mockSettings) Set(key string, value any) error {
	if key == "unknown.key" {
		return domain.ErrInvalidInput
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Path() string { return "/home/test/.knock/config.toml" }

type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
	err     error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

var errBoom = errors.New("boom")

// ==================== Helpers ====================

// withServices installs s for the duration of the test.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	oldServices, oldOwns, oldBootstrap := services, ownsServices, bootstrap
	SetServices(s)
	bootstrap = nil
	t.Cleanup(func() {
		services, ownsServices, bootstrap = oldServices, oldOwns, oldBootstrap
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	setContext(rootCmd, ctx)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// setContext replaces the context cobra keeps on every command from
// earlier executions.
func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(c, ctx)
	}
}

func resetFlags() {
	flagVerbose = false
	flagConfigDir = ""
	runJSON = false
	recordsJSON = false
	recordsLimit = 20
	recordsOffset = 0
	serveMetricsAddr = ""
	mcpPort = 0
}
