package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/types"
)

func buildSnapshot(t *testing.T, exts ...*types.Extraction) *graph.Snapshot {
	t.Helper()
	overlays := make(map[string]*types.Extraction, len(exts))
	for _, e := range exts {
		overlays[e.File] = e
	}
	return (&graph.Snapshot{Files: map[string]*types.Extraction{}}).WithOverlay(overlays)
}

func TestBuildEmitsOneFileNodePerFile(t *testing.T) {
	snap := buildSnapshot(t,
		&types.Extraction{File: "a.c", Language: types.LangC},
		&types.Extraction{File: "b.py", Language: types.LangPython},
	)

	g := Build(snap, nil)

	var fileNodes int
	for _, n := range g.Nodes {
		if n.Kind == NodeFile {
			fileNodes++
		}
	}
	assert.Equal(t, 2, fileNodes)
}

func TestBuildEmitsSymbolNodesForFunctionVariableArrayOnly(t *testing.T) {
	size := 4
	ext := &types.Extraction{
		File:     "a.c",
		Language: types.LangC,
		Symbols: []types.Symbol{
			{Name: "f", File: "a.c", Line: 1, Kind: types.KindFunction},
			{Name: "v", File: "a.c", Line: 2, Kind: types.KindVariable},
			{Name: "arr", File: "a.c", Line: 3, Kind: types.KindArray, ArraySize: &size},
			{Name: "S", File: "a.c", Line: 4, Kind: types.KindStruct},
			{Name: "ext", File: "a.c", Line: 5, Kind: types.KindExtern},
		},
	}
	snap := buildSnapshot(t, ext)
	g := Build(snap, nil)

	var symbolNodes int
	for _, n := range g.Nodes {
		if n.Kind == NodeSymbol {
			symbolNodes++
		}
	}
	assert.Equal(t, 3, symbolNodes)
}

func TestBuildFlagsFileWithMatchingDiagnostic(t *testing.T) {
	ext := &types.Extraction{
		File:     "a.c",
		Language: types.LangC,
		Symbols:  []types.Symbol{{Name: "f", File: "a.c", Line: 10, Kind: types.KindFunction}},
	}
	snap := buildSnapshot(t, ext)
	diags := []types.Diagnostic{{File: "a.c", Line: 10, Code: types.CodeUnsafeFunction, Message: "bad"}}

	g := Build(snap, diags)

	for _, n := range g.Nodes {
		if n.Kind == NodeFile {
			assert.True(t, n.HasErrors)
		}
		if n.Kind == NodeSymbol {
			assert.True(t, n.HasErrors)
		}
	}
}

func TestBuildCreatesReferencesEdgeBetweenSameNamedCrossFileSymbols(t *testing.T) {
	declExt := &types.Extraction{
		File:     "a.c",
		Language: types.LangC,
		Symbols:  []types.Symbol{{Name: "shared", File: "a.c", Line: 1, Kind: types.KindFunction}},
	}
	callerExt := &types.Extraction{
		File:     "b.c",
		Language: types.LangC,
		Symbols:  []types.Symbol{{Name: "shared", File: "b.c", Line: 5, Kind: types.KindVariable}},
	}
	snap := buildSnapshot(t, declExt, callerExt)
	g := Build(snap, nil)

	var found bool
	for _, e := range g.Edges {
		if e.Kind == EdgeReferences {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildNeverEmitsReferencesEdgeWithinTheSameFile(t *testing.T) {
	ext := &types.Extraction{
		File:     "a.c",
		Language: types.LangC,
		Symbols: []types.Symbol{
			{Name: "dup", File: "a.c", Line: 1, Kind: types.KindFunction},
			{Name: "dup", File: "a.c", Line: 9, Kind: types.KindVariable},
		},
	}
	snap := buildSnapshot(t, ext)
	g := Build(snap, nil)

	for _, e := range g.Edges {
		assert.NotEqual(t, EdgeReferences, e.Kind)
	}
}
