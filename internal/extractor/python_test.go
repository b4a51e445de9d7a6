package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipe-dev/snipe/internal/parser"
	"github.com/snipe-dev/snipe/internal/types"
)

func extractPython(t *testing.T, src string) types.Extraction {
	t.Helper()
	p := parser.New()
	tree, ok := p.Parse(types.LangPython, []byte(src))
	require.True(t, ok)
	defer tree.Close()
	return NewPython().Extract("buf.py", []byte(src), tree)
}

func findSymbol(ext types.Extraction, name string) (types.Symbol, bool) {
	for _, s := range ext.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return types.Symbol{}, false
}

func TestPythonExtractFunctionWithAnnotatedParamsAndReturnType(t *testing.T) {
	ext := extractPython(t, "def add(a: int, b: int = 0) -> int:\n    return a + b\n")

	sym, ok := findSymbol(ext, "add")
	require.True(t, ok)
	assert.Equal(t, types.KindFunction, sym.Kind)
	assert.Equal(t, "int", sym.ReturnType)
	require.Len(t, sym.Params, 2)
	assert.Equal(t, "a", sym.Params[0].Name)
	assert.Equal(t, "int", sym.Params[0].AnnotatedType)
	assert.Equal(t, "0", sym.Params[1].Default)
}

func TestPythonExtractVarargsAndKwargs(t *testing.T) {
	ext := extractPython(t, "def f(*args, **kwargs):\n    pass\n")

	sym, ok := findSymbol(ext, "f")
	require.True(t, ok)
	assert.True(t, sym.VarargsFlag)
	assert.True(t, sym.KwargsFlag)
}

func TestPythonExtractAnnotatedModuleAssignment(t *testing.T) {
	ext := extractPython(t, "count: int = 0\n")

	sym, ok := findSymbol(ext, "count")
	require.True(t, ok)
	assert.Equal(t, types.KindVariable, sym.Kind)
	assert.Equal(t, "int", sym.DeclaredType)
	assert.Equal(t, types.ScopeModule, sym.Scope)
}

func TestPythonExtractModuleLevelListBecomesArraySymbol(t *testing.T) {
	ext := extractPython(t, "items = [1, 2, 3]\n")

	sym, ok := findSymbol(ext, "items")
	require.True(t, ok)
	assert.Equal(t, types.KindArray, sym.Kind)
	require.NotNil(t, sym.ArraySize)
	assert.Equal(t, 3, *sym.ArraySize)
}

func TestPythonExtractStarImportIsFlagged(t *testing.T) {
	ext := extractPython(t, "from os import *\n")

	sym, ok := findSymbol(ext, "*")
	require.True(t, ok)
	assert.True(t, sym.StarImport)
}

func TestPythonExtractPlainImportRecordsName(t *testing.T) {
	ext := extractPython(t, "import json\n")

	sym, ok := findSymbol(ext, "json")
	require.True(t, ok)
	assert.Equal(t, types.KindImport, sym.Kind)
	assert.False(t, sym.StarImport)
}

func TestPythonExtractCallReference(t *testing.T) {
	ext := extractPython(t, "def main():\n    process(1, 2)\n")

	var found *types.Reference
	for i := range ext.References {
		if ext.References[i].Kind == types.UseCall && ext.References[i].Name == "process" {
			found = &ext.References[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 2, found.ArgCount)
}

func TestPythonExtractReturnReferenceCarriesEnclosingFunction(t *testing.T) {
	ext := extractPython(t, "def total() -> int:\n    return 1\n")

	var found *types.Reference
	for i := range ext.References {
		if ext.References[i].Kind == types.UseReturn {
			found = &ext.References[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "total", found.EnclosingFunction)
}

func TestPythonExtractCallArgumentIdentifierProducesReadReference(t *testing.T) {
	ext := extractPython(t, "def main():\n    process(undefined_var)\n")

	var found bool
	for _, r := range ext.References {
		if r.Kind == types.UseRead && r.Name == "undefined_var" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPythonExtractAssignmentRHSIdentifierProducesReadReference(t *testing.T) {
	ext := extractPython(t, "y = nonexistent_name\n")

	var found bool
	for _, r := range ext.References {
		if r.Kind == types.UseRead && r.Name == "nonexistent_name" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPythonExtractStandaloneIdentifierStatementProducesReadReference(t *testing.T) {
	ext := extractPython(t, "def main():\n    bare_name\n")

	var found bool
	for _, r := range ext.References {
		if r.Kind == types.UseRead && r.Name == "bare_name" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPythonExtractReferencesInFileCountsUsages(t *testing.T) {
	ext := extractPython(t, "import sys\n\ndef main():\n    sys.exit(1)\n")

	sym, ok := findSymbol(ext, "sys")
	require.True(t, ok)
	assert.Equal(t, 1, sym.ReferencesInFile)
}
