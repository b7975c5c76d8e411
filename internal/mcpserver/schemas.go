package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// openDocumentTool returns the tool definition for open_document
func openDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "open_document",
		Description: "Open a gettext PO document and index its units for translation memory matching",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the PO file",
				},
			},
			Required: []string{"path"},
		},
	}
}

// closeDocumentTool returns the tool definition for close_document
func closeDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "close_document",
		Description: "Close the open document, dropping its index and the query cache",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// queryTool returns the tool definition for query_tm
func queryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_tm",
		Description: "Query all translation memory backends for a source text and return ranked match candidates",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Source text to find translations for",
				},
				"source_lang": map[string]interface{}{
					"type":        "string",
					"description": "Source language code (defaults to the configured pair)",
				},
				"target_lang": map[string]interface{}{
					"type":        "string",
					"description": "Target language code (defaults to the configured pair)",
				},
			},
			Required: []string{"source"},
		},
	}
}

// selectMatchTool returns the tool definition for select_match
func selectMatchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "select_match",
		Description: "Accept a match candidate, returning the target text to insert into the document",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Source text of the accepted candidate",
				},
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Target text of the accepted candidate",
				},
			},
			Required: []string{"source", "target"},
		},
	}
}

// pushTool returns the tool definition for push_tm
func pushTool() mcp.Tool {
	return mcp.Tool{
		Name:        "push_tm",
		Description: "Upload the open document's translated units to the remote translation memory server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// statusTool returns the tool definition for tm_status
func statusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "tm_status",
		Description: "Report the open document, active backends, and query cache statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
