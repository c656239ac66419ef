package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// ListRecordsInput is the input schema for the list_records tool.
type ListRecordsInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 20, max 200)"`
	Offset int `json:"offset,omitempty" jsonschema:"number of records to skip"`
}

// ListRecordsOutput is the output schema for the list_records tool.
type ListRecordsOutput struct {
	Records []RecordSummary `json:"records"`
	Total   int             `json:"total"`
}

// RecordSummary is the short form of a canonical record.
type RecordSummary struct {
	ID          string   `json:"id"`
	Code        string   `json:"code,omitempty"`
	Title       string   `json:"title"`
	Domain      string   `json:"domain"`
	Opening     string   `json:"opening"`
	Reservation []string `json:"reservation,omitempty"`
}

// GetRecordInput is the input schema for the get_record tool.
type GetRecordInput struct {
	Ref string `json:"ref" jsonschema:"record ID, film catalog code or title"`
}

// RunIngestionInput is the input schema for the run_ingestion tool.
type RunIngestionInput struct{}

// RunIngestionOutput is the output schema for the run_ingestion tool.
type RunIngestionOutput struct {
	Produced int      `json:"produced"`
	Failed   []string `json:"failed,omitempty"`
	Summary  []string `json:"summary"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_records",
		Description: "List canonical movie and performance records, newest opening first",
	}, s.handleListRecords)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_record",
		Description: "Get one canonical record by ID, catalog code or title",
	}, s.handleGetRecord)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "run_ingestion",
			Description: "Run one ingestion pass over every enabled source",
		}, s.handleRunIngestion)
	}
}

func (s *Server) handleListRecords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRecordsInput,
) (*mcp.CallToolResult, ListRecordsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset := max(input.Offset, 0)

	records, err := s.ports.Records.List(ctx, limit, offset)
	if err != nil {
		return nil, ListRecordsOutput{}, fmt.Errorf("listing records: %w", err)
	}
	total, err := s.ports.Records.Count(ctx)
	if err != nil {
		return nil, ListRecordsOutput{}, fmt.Errorf("counting records: %w", err)
	}

	out := ListRecordsOutput{Records: make([]RecordSummary, len(records)), Total: total}
	for i := range records {
		out.Records[i] = summarize(&records[i])
	}
	return nil, out, nil
}

func (s *Server) handleGetRecord(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRecordInput,
) (*mcp.CallToolResult, domain.CanonicalRecord, error) {
	if input.Ref == "" {
		return nil, domain.CanonicalRecord{}, fmt.Errorf("%w: ref is required", domain.ErrInvalidInput)
	}
	rec, err := s.ports.Records.Get(ctx, input.Ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.CanonicalRecord{}, fmt.Errorf("record not found: %s", input.Ref)
	}
	if err != nil {
		return nil, domain.CanonicalRecord{}, fmt.Errorf("getting record: %w", err)
	}
	return nil, *rec, nil
}

func (s *Server) handleRunIngestion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RunIngestionInput,
) (*mcp.CallToolResult, RunIngestionOutput, error) {
	report, err := s.ports.Ingestion.RunOnce(ctx)
	if err != nil {
		return nil, RunIngestionOutput{}, fmt.Errorf("ingestion failed: %w", err)
	}

	out := RunIngestionOutput{
		Produced: report.Produced(),
		Failed:   report.FailedSources(),
		Summary:  make([]string, len(report.Sources)),
	}
	for i := range report.Sources {
		out.Summary[i] = report.Sources[i].Summary()
	}
	return nil, out, nil
}

func summarize(r *domain.CanonicalRecord) RecordSummary {
	var links []string
	for _, l := range r.ReservationLinks {
		if l != "" {
			links = append(links, l)
		}
	}
	return RecordSummary{
		ID:          r.ID,
		Code:        r.Code,
		Title:       r.Title,
		Domain:      r.Domain.String(),
		Opening:     domain.FormatEpochMillis(r.OpeningTime),
		Reservation: links,
	}
}
