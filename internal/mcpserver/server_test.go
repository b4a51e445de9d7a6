package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipe-dev/snipe/internal/engine"
)

func callToolRequest(t *testing.T, params map[string]interface{}) *mcp.CallToolRequest {
	t.Helper()
	data, err := json.Marshal(params)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: data}}
}

func writeRepoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleHealthReportsOK(t *testing.T) {
	s := New(engine.New())
	result, err := s.handleHealth(context.Background(), callToolRequest(t, nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "OK")
}

func TestHandleAnalyzeReturnsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "main.c", "int main(void) { return 0; }\n")

	s := New(engine.New())
	req := callToolRequest(t, map[string]interface{}{
		"content":   "void f() { gets(buf); }",
		"file_path": filepath.Join(root, "bad.c"),
		"repo_path": root,
	})
	result, err := s.handleAnalyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "SNIPE_UNSAFE_FUNCTION")
}

func TestHandleAnalyzeReturnsErrorResultOnMalformedArguments(t *testing.T) {
	s := New(engine.New())
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: []byte("not json")}}

	result, err := s.handleAnalyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "analyze")
}

func TestHandleRefreshReturnsSymbolCount(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "main.c", "int main(void) { return 0; }\n")

	s := New(engine.New())
	req := callToolRequest(t, map[string]interface{}{"repo_path": root})
	result, err := s.handleRefresh(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "symbol_count")
}

func TestHandleSymbolsListsRepoSymbols(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "main.c", "int main(void) { return 0; }\n")

	s := New(engine.New())
	req := callToolRequest(t, map[string]interface{}{"repo_path": root})
	result, err := s.handleSymbols(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "main")
}

func TestHandleGraphReturnsNodesAndEdges(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "main.c", "int main(void) { return 0; }\n")

	s := New(engine.New())
	req := callToolRequest(t, map[string]interface{}{"repo_path": root})
	result, err := s.handleGraph(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "nodes")
}

func TestHandleSaveDiagnosticsPersists(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "main.c", "int main(void) { return 0; }\n")

	s := New(engine.New())
	req := callToolRequest(t, map[string]interface{}{
		"repo_path": root,
		"diagnostics": []map[string]interface{}{
			{"file": "main.c", "line": 1, "severity": "WARNING", "code": "SNIPE_DEAD_IMPORT", "message": "unused"},
		},
	})
	result, err := s.handleSaveDiagnostics(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"saved":1`)

	_, err = os.Stat(filepath.Join(root, ".snipe", "diagnostics.json"))
	assert.NoError(t, err)
}

func TestNewConstructsServer(t *testing.T) {
	s := New(engine.New())
	assert.NotNil(t, s.server)
}
