package tui

import (
	"context"
	"sync"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

type mockRecordService struct {
	records []domain.CanonicalRecord
	err     error
}

func (m *mockRecordService) List(_ context.Context, limit, offset int) ([]domain.CanonicalRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if offset >= len(m.records) {
		return nil, nil
	}
	return m.records[offset:min(offset+limit, len(m.records))], nil
}

func (m *mockRecordService) Get(_ context.Context, ref string) (*domain.CanonicalRecord, error) {
	for i := range m.records {
		if m.records[i].ID == ref {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecordService) Count(_ context.Context) (int, error) {
	return len(m.records), m.err
}

func (m *mockRecordService) ImportAuthoritative(_ context.Context, entries []domain.AuthoritativeEntry) (int, error) {
	return len(entries), nil
}

type mockIngestion struct {
	mu     sync.Mutex
	report *domain.RunReport
	err    error
	calls  int
}

func (m *mockIngestion) RunOnce(_ context.Context) (*domain.RunReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.report, m.err
}

func (m *mockIngestion) Status(_ context.Context) (*driving.RunStatus, error) {
	return &driving.RunStatus{}, nil
}
