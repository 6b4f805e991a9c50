// Package mcp provides an MCP (Model Context Protocol) server adapter
// for Quaestor. It lets AI assistants retrieve indexed chunks and
// manage the index over stdio or HTTP.
package mcp

import "errors"

// ErrMissingEngine is returned when the retrieval engine is not provided.
var ErrMissingEngine = errors.New("mcp: retrieval engine is required")
