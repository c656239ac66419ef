package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

func sampleRecords() []domain.CanonicalRecord {
	return []domain.CanonicalRecord{
		{
			ID:               "0b6f1c2e-0000-4000-8000-000000000001",
			Code:             "20241002",
			Title:            "파묘",
			OpeningTime:      1708560000000,
			Directors:        []string{"장재현"},
			Cast:             []string{"최민식", "김고은"},
			ReservationLinks: []string{"https://megabox.example/1", "", "https://lotte.example/1"},
			Categories:       []domain.CategoryRef{{ID: "c1", Name: "미스터리"}},
			Plot:             "묘를 이장한다",
			RunningTime:      134,
			Domain:           domain.DomainMovie,
			SourceID:         "kofic",
		},
		{
			ID:               "0b6f1c2e-0000-4000-8000-000000000002",
			Title:            "레미제라블",
			ReservationLinks: []string{"", "", ""},
			Plot:             domain.PlotUnavailable,
			Domain:           domain.DomainPerformingArts,
		},
	}
}

func TestRecordsListCmd(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{records: sampleRecords()}})

	out, err := execute(t, "records", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "파묘")
	assert.Contains(t, out, "20241002")
	assert.Contains(t, out, "M-L")
	assert.Contains(t, out, "PERFORMING_ARTS")
	assert.Contains(t, out, "Showing 1-2 of 2")
}

func TestRecordsListCmd_Paging(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{records: sampleRecords()}})

	out, err := execute(t, "records", "list", "--limit", "1", "--offset", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "레미제라블")
	assert.NotContains(t, out, "파묘")
	assert.Contains(t, out, "Showing 2-2 of 2")
}

func TestRecordsListCmd_Empty(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{}})

	out, err := execute(t, "records", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No records found.")
}

func TestRecordsListCmd_JSON(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{records: sampleRecords()}})

	out, err := execute(t, "records", "list", "--json")
	require.NoError(t, err)

	var got []domain.CanonicalRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 2)
}

func TestRecordsListCmd_Error(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{err: errBoom}})

	_, err := execute(t, "records", "list")

	assert.ErrorIs(t, err, errBoom)
}

func TestRecordsShowCmd(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{records: sampleRecords()}})

	out, err := execute(t, "records", "show", "20241002")

	require.NoError(t, err)
	assert.Contains(t, out, "파묘")
	assert.Contains(t, out, "2024.02.22")
	assert.Contains(t, out, "최민식, 김고은")
	assert.Contains(t, out, "미스터리")
	assert.Contains(t, out, "134 min")
	assert.Contains(t, out, "https://megabox.example/1")
	assert.Contains(t, out, "묘를 이장한다")
}

func TestRecordsShowCmd_HidesPlaceholderPlot(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{records: sampleRecords()}})

	out, err := execute(t, "records", "show", "레미제라블")

	require.NoError(t, err)
	assert.NotContains(t, out, domain.PlotUnavailable)
}

func TestRecordsShowCmd_NotFound(t *testing.T) {
	withServices(t, &Services{Records: &mockRecords{}})

	_, err := execute(t, "records", "show", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record not found: missing")
}

func TestLinkSummary(t *testing.T) {
	assert.Equal(t, "---", linkSummary(nil))
	assert.Equal(t, "-C-", linkSummary([]string{"", "https://cgv", ""}))
	assert.Equal(t, "MCL", linkSummary([]string{"a", "b", "c"}))
}
