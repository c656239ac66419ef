package mcp

import (
	"context"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
)

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	records []domain.CanonicalRecord
	err     error

	lastLimit, lastOffset int
}

func (m *mockRecordService) List(_ context.Context, limit, offset int) ([]domain.CanonicalRecord, error) {
	m.lastLimit, m.lastOffset = limit, offset
	if m.err != nil {
		return nil, m.err
	}
	if offset >= len(m.records) {
		return nil, nil
	}
	return m.records[offset:min(offset+limit, len(m.records))], nil
}

func (m *mockRecordService) Get(_ context.Context, ref string) (*domain.CanonicalRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if r := m.records[i]; r.ID == ref || r.Code == ref || r.Title == ref {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecordService) Count(_ context.Context) (int, error) {
	return len(m.records), m.err
}

func (m *mockRecordService) ImportAuthoritative(_ context.Context, entries []domain.AuthoritativeEntry) (int, error) {
	return len(entries), m.err
}

// mockIngestion is a mock implementation of driving.IngestionOrchestrator.
type mockIngestion struct {
	report *domain.RunReport
	err    error
}

func (m *mockIngestion) RunOnce(_ context.Context) (*domain.RunReport, error) {
	return m.report, m.err
}

func (m *mockIngestion) Status(_ context.Context) (*driving.RunStatus, error) {
	return &driving.RunStatus{}, nil
}

func sampleRecords() []domain.CanonicalRecord {
	return []domain.CanonicalRecord{
		{
			ID:               "r1",
			Code:             "20231234",
			Title:            "파묘",
			Domain:           domain.DomainMovie,
			OpeningTime:      1708560000000,
			ReservationLinks: []string{"", "https://cgv.example/1", ""},
		},
		{
			ID:               "r2",
			Title:            "Les Misérables",
			Domain:           domain.DomainPerformingArts,
			ReservationLinks: []string{"", "", ""},
		},
	}
}
