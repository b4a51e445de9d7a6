package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipe-dev/snipe/internal/parser"
	"github.com/snipe-dev/snipe/internal/types"
)

func extractC(t *testing.T, src string) types.Extraction {
	t.Helper()
	p := parser.New()
	tree, ok := p.Parse(types.LangC, []byte(src))
	require.True(t, ok)
	defer tree.Close()
	return NewC().Extract("buf.c", []byte(src), tree)
}

func TestCExtractFunctionDefinitionWithParams(t *testing.T) {
	ext := extractC(t, "int add(int a, int b) {\n    return a + b;\n}\n")

	sym, ok := findSymbol(ext, "add")
	require.True(t, ok)
	assert.Equal(t, types.KindFunction, sym.Kind)
	assert.Equal(t, "int", sym.ReturnType)
	require.Len(t, sym.Params, 2)
	assert.Equal(t, "a", sym.Params[0].Name)
	assert.Equal(t, "int", sym.Params[0].AnnotatedType)
}

func TestCExtractExternDeclaration(t *testing.T) {
	ext := extractC(t, "extern int g_counter;\n")

	sym, ok := findSymbol(ext, "g_counter")
	require.True(t, ok)
	assert.Equal(t, types.KindExtern, sym.Kind)
	assert.Equal(t, "int", sym.DeclaredType)
}

func TestCExtractArrayDeclarationWithLiteralSize(t *testing.T) {
	ext := extractC(t, "char buf[16];\n")

	sym, ok := findSymbol(ext, "buf")
	require.True(t, ok)
	assert.Equal(t, types.KindArray, sym.Kind)
	require.NotNil(t, sym.ArraySize)
	assert.Equal(t, 16, *sym.ArraySize)
}

func TestCExtractStructWithMembers(t *testing.T) {
	ext := extractC(t, "struct Point {\n    int x;\n    int y;\n};\n")

	sym, ok := findSymbol(ext, "Point")
	require.True(t, ok)
	assert.Equal(t, types.KindStruct, sym.Kind)
	require.Len(t, sym.StructMembers, 2)
	assert.Equal(t, "x", sym.StructMembers[0].Name)
	assert.Equal(t, "y", sym.StructMembers[1].Name)
}

func TestCExtractFormatCallSeparatesFormatArgsFromVariadic(t *testing.T) {
	ext := extractC(t, `void f() { printf("%d", 1); }`)

	var found *types.Reference
	for i := range ext.References {
		if ext.References[i].Kind == types.UseFormatCall {
			found = &ext.References[i]
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.HasFormatLiteral)
	assert.Equal(t, `"%d"`, found.FormatLiteral)
	assert.Equal(t, 1, found.ArgCount)
}

func TestCExtractArraySubscriptLiteralIndex(t *testing.T) {
	ext := extractC(t, "void f() { int x = buf[3]; }")

	var found *types.Reference
	for i := range ext.References {
		if ext.References[i].Kind == types.UseArrayAccess {
			found = &ext.References[i]
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.IndexIsLiteral)
	assert.Equal(t, 3, found.IndexLiteral)
}

func TestCExtractCallArgumentIdentifierProducesReadReference(t *testing.T) {
	ext := extractC(t, "void f() { helper(undefined_var); }")

	var found bool
	for _, r := range ext.References {
		if r.Kind == types.UseRead && r.Name == "undefined_var" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCExtractAssignmentRHSIdentifierProducesReadReference(t *testing.T) {
	ext := extractC(t, "void f() { int y; y = nonexistent_name; }")

	var found bool
	for _, r := range ext.References {
		if r.Kind == types.UseRead && r.Name == "nonexistent_name" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCExtractStandaloneIdentifierStatementProducesReadReference(t *testing.T) {
	ext := extractC(t, "void f() { bare_name; }")

	var found bool
	for _, r := range ext.References {
		if r.Kind == types.UseRead && r.Name == "bare_name" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCExtractPlainCallIsNotMistakenForFormatCall(t *testing.T) {
	ext := extractC(t, "void f() { helper(1, 2, 3); }")

	var found *types.Reference
	for i := range ext.References {
		if ext.References[i].Kind == types.UseCall && ext.References[i].Name == "helper" {
			found = &ext.References[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 3, found.ArgCount)
}
