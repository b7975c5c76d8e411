package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localizers/tmatch/internal/config"
)

const testPO = `msgid ""
msgstr ""
"Language: fr\n"

msgid "Open a file"
msgstr "Ouvrir un fichier"

msgid "Save file"
msgstr "Enregistrer le fichier"

msgid "Quit"
msgstr ""
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := NewServer(config.Default())
	require.NoError(t, err)
	t.Cleanup(s.close)
	return s
}

func writeTestPO(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fr.po")
	require.NoError(t, os.WriteFile(path, []byte(testPO), 0644))
	return path
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestServerInitialization(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.engine)
	assert.NotNil(t, s.watch)
}

func TestOpenDocumentTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleOpenDocument(ctx, callRequest("open_document", map[string]interface{}{
		"path": writeTestPO(t),
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, true, payload["opened"])
	assert.Equal(t, "fr.po", payload["document"])
	assert.Equal(t, float64(3), payload["units"])
}

func TestOpenDocumentRequiresAbsolutePath(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleOpenDocument(context.Background(), callRequest("open_document", map[string]interface{}{
		"path": "relative/fr.po",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestOpenDocumentMissingFile(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleOpenDocument(context.Background(), callRequest("open_document", map[string]interface{}{
		"path": filepath.Join(t.TempDir(), "absent.po"),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeLoadFailed, mcpErr.Code)
}

func TestQueryTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleOpenDocument(ctx, callRequest("open_document", map[string]interface{}{
		"path": writeTestPO(t),
	}))
	require.NoError(t, err)

	result, err := s.handleQuery(ctx, callRequest("query_tm", map[string]interface{}{
		"source": "Open file",
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, "Open file", payload["query"])

	matches, ok := payload["matches"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, matches)

	first, ok := matches[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ouvrir un fichier", first["target"])
	assert.Equal(t, float64(81), first["quality"])
}

func TestQueryToolRejectsEmptySource(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleQuery(context.Background(), callRequest("query_tm", map[string]interface{}{
		"source": "",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestSelectMatchTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleSelectMatch(context.Background(), callRequest("select_match", map[string]interface{}{
		"source": "Open a file",
		"target": "Ouvrir un fichier",
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, "Ouvrir un fichier", payload["insert"])
}

func TestPushToolWithoutDocument(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handlePush(context.Background(), callRequest("push_tm", nil))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInternalError, mcpErr.Code)
}

func TestStatusTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleStatus(ctx, callRequest("tm_status", nil))
	require.NoError(t, err)
	payload := resultJSON(t, result)
	assert.Nil(t, payload["document"])

	_, err = s.handleOpenDocument(ctx, callRequest("open_document", map[string]interface{}{
		"path": writeTestPO(t),
	}))
	require.NoError(t, err)

	result, err = s.handleStatus(ctx, callRequest("tm_status", nil))
	require.NoError(t, err)
	payload = resultJSON(t, result)

	doc, ok := payload["document"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fr.po", doc["name"])
	assert.Equal(t, float64(3), doc["units"])

	backends, ok := payload["backends"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, backends, "currentfile")
}

func TestCloseDocumentTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleOpenDocument(ctx, callRequest("open_document", map[string]interface{}{
		"path": writeTestPO(t),
	}))
	require.NoError(t, err)

	result, err := s.handleCloseDocument(ctx, callRequest("close_document", nil))
	require.NoError(t, err)
	payload := resultJSON(t, result)
	assert.Equal(t, true, payload["closed"])

	assert.Nil(t, s.engine.Document())
}
