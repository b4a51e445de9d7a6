package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipe-dev/snipe/internal/types"
)

func TestSaveThenLoadDiagnosticsRoundTrips(t *testing.T) {
	root := t.TempDir()
	diags := []types.Diagnostic{
		{File: "a.c", Line: 10, Severity: types.SeverityWarning, Code: types.CodeArrayBounds, Message: "out of bounds"},
	}

	require.NoError(t, SaveDiagnostics(root, diags))

	loaded, err := LoadDiagnostics(root)
	require.NoError(t, err)
	assert.Equal(t, diags, loaded)
}

func TestLoadDiagnosticsMissingFileIsNotAnError(t *testing.T) {
	root := t.TempDir()
	diags, err := LoadDiagnostics(root)
	require.NoError(t, err)
	assert.Nil(t, diags)
}

func TestSaveDiagnosticsOverwritesPreviousContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, SaveDiagnostics(root, []types.Diagnostic{{File: "a.c", Line: 1, Message: "old"}}))
	require.NoError(t, SaveDiagnostics(root, []types.Diagnostic{{File: "b.c", Line: 2, Message: "new"}}))

	loaded, err := LoadDiagnostics(root)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].Message)
}

func TestSymbolCacheRoundTrip(t *testing.T) {
	root := t.TempDir()
	entry := SymbolCacheEntry{
		Hash:       ContentHash([]byte("int main() {}")),
		Extraction: types.Extraction{File: "main.c", Language: types.LangC},
	}
	c := SymbolCache{"main.c": entry}
	SaveSymbolCache(root, c)

	loaded, err := LoadSymbolCache(root)
	require.NoError(t, err)
	assert.Equal(t, entry, loaded["main.c"])
}

func TestLoadSymbolCacheMissingFileReturnsEmptyCache(t *testing.T) {
	root := t.TempDir()
	loaded, err := LoadSymbolCache(root)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestContentHashIsDeterministic(t *testing.T) {
	a := ContentHash([]byte("same bytes"))
	b := ContentHash([]byte("same bytes"))
	c := ContentHash([]byte("different bytes"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
