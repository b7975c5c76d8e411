package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/localizers/tmatch/pkg/tm"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNoDocument    = -32001 // No document is open
	ErrorCodeLoadFailed    = -32002 // Document could not be loaded
	ErrorCodeEmptyQuery    = -32003 // Source text parameter is empty
)

// handleOpenDocument handles the open_document tool invocation
func (s *Server) handleOpenDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if !filepath.IsAbs(path) {
		return nil, newMCPError(ErrorCodeInvalidParams, "path must be absolute", map[string]interface{}{
			"param": "path",
			"value": path,
		})
	}

	if err := s.engine.OnDocumentLoaded(path); err != nil {
		return nil, newMCPError(ErrorCodeLoadFailed, "failed to load document", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	if err := s.watch.Watch(path); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to watch document", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	doc := s.engine.Document()
	response := map[string]interface{}{
		"opened":   true,
		"document": doc.Name(),
		"units":    len(doc.Units),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCloseDocument handles the close_document tool invocation
func (s *Server) handleCloseDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.watch.Unwatch()

	if err := s.engine.OnDocumentClosed(); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to close document", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"closed": true})), nil
}

// handleQuery handles the query_tm tool invocation
func (s *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	source, ok := args["source"].(string)
	if !ok || source == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "source parameter is required and cannot be empty", map[string]interface{}{
			"param":  "source",
			"reason": "missing or empty",
		})
	}

	q := tm.Query{
		Source:     source,
		SourceLang: getStringDefault(args, "source_lang", ""),
		TargetLang: getStringDefault(args, "target_lang", ""),
	}

	matches, err := s.engine.Lookup(ctx, q)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		entry := map[string]interface{}{
			"source": m.Source,
			"target": m.Target,
		}
		if m.Quality != nil {
			entry["quality"] = *m.Quality
		}
		if m.Context != "" {
			entry["context"] = m.Context
		}
		if m.Origin != "" {
			entry["origin"] = m.Origin
		}
		results = append(results, entry)
	}

	response := map[string]interface{}{
		"query":   source,
		"matches": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSelectMatch handles the select_match tool invocation
func (s *Server) handleSelectMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	source, _ := args["source"].(string)
	target, ok := args["target"].(string)
	if !ok || target == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "target parameter is required", map[string]interface{}{
			"param":  "target",
			"reason": "missing or empty",
		})
	}

	text := s.engine.Select(tm.Candidate{Source: source, Target: target})
	response := map[string]interface{}{
		"insert": text,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handlePush handles the push_tm tool invocation
func (s *Server) handlePush(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.engine.Push(ctx); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "push failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"pushed": true})), nil
}

// handleStatus handles the tm_status tool invocation
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"backends":       s.engine.Sources(),
		"cached_queries": s.engine.CachedQueries(),
	}

	if doc := s.engine.Document(); doc != nil {
		response["document"] = map[string]interface{}{
			"path":  doc.Path,
			"name":  doc.Name(),
			"units": len(doc.Units),
		}
	} else {
		response["document"] = nil
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
