// Package mcp provides an MCP (Model Context Protocol) server adapter for knock.
// It lets AI assistants browse canonical records and trigger ingestion passes.
package mcp

import "errors"

// ErrMissingRecordService is returned when the record service is not provided.
var ErrMissingRecordService = errors.New("mcp: record service is required")
