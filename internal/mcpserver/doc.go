// Package mcpserver exposes the translation memory engine over the Model
// Context Protocol (MCP).
//
// The server offers six tools:
//   - open_document: Load and index a gettext PO file
//   - close_document: Drop the document index and query cache
//   - query_tm: Query all backends for a source text, ranked
//   - select_match: Accept a candidate, returning its target text
//   - push_tm: Upload translated units to the remote TM server
//   - tm_status: Report the open document and backend statistics
//
// MCP is JSON-RPC 2.0 over stdio. Stdout is reserved for the protocol;
// all logging goes to stderr.
//
// # Basic Usage
//
// The server is started via the serve command:
//
//	tmatch serve
//
// and configured as an MCP server in the host client:
//
//	{
//	  "mcpServers": {
//	    "tmatch": {
//	      "command": "/usr/local/bin/tmatch",
//	      "args": ["serve"]
//	    }
//	  }
//	}
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (backend, filesystem)
//   - -32001: No document is open
//   - -32002: Document could not be loaded
//   - -32003: Empty source text
//
// While a document is open, its file is watched and re-indexed
// automatically when an external editor saves it.
package mcpserver
