package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

const (
	uriScheme = "knock://"

	// recentLimit is the number of records in the knock://records listing.
	recentLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "records",
		Name:        "records",
		Description: "Most recent canonical records",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{ref}",
		Name:        "record",
		Description: "One canonical record by ID, catalog code or title",
		MIMEType:    "application/json",
	}, s.handleRecordResource)
}

func (s *Server) handleRecordsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	records, err := s.ports.Records.List(ctx, recentLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	summaries := make([]RecordSummary, len(records))
	for i := range records {
		summaries[i] = summarize(&records[i])
	}
	return jsonResult(req.Params.URI, summaries)
}

func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ref := extractRecordRef(req.Params.URI)
	if ref == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rec, err := s.ports.Records.Get(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return jsonResult(req.Params.URI, rec)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRecordRef extracts the ref from knock://records/{ref}.
// Titles arrive percent-encoded.
func extractRecordRef(uri string) string {
	const prefix = uriScheme + "records/"

	ref, ok := strings.CutPrefix(uri, prefix)
	if !ok || ref == "" || strings.Contains(ref, "/") {
		return ""
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	return ref
}
