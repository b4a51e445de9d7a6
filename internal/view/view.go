// Package view builds the node/edge graph visualization model (spec.md
// §4.5) from a repo symbol graph snapshot and the most recently saved
// diagnostics.
package view

import (
	"path/filepath"
	"strconv"

	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/types"
)

type NodeKind string

const (
	NodeFile   NodeKind = "file"
	NodeSymbol NodeKind = "symbol"
)

type EdgeKind string

const (
	EdgeBelongsTo  EdgeKind = "BELONGS_TO"
	EdgeReferences EdgeKind = "REFERENCES"
)

// Node is one file or symbol node in the view.
type Node struct {
	ID        string         `json:"id"`
	Kind      NodeKind       `json:"kind"`
	Label     string         `json:"label"`
	File      string         `json:"file"`
	Line      int            `json:"line,omitempty"`
	SymbolKind types.SymbolKind `json:"symbolKind,omitempty"`
	HasErrors bool           `json:"hasErrors"`
}

// Edge connects two node IDs.
type Edge struct {
	Kind EdgeKind `json:"kind"`
	From string   `json:"from"`
	To   string   `json:"to"`
}

// Graph is the node/edge view §6's graph operation returns.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// includedSymbolKinds is the set of non-file symbol kinds spec.md §4.5
// projects as their own node (function, variable, array) — imports,
// externs, struct defs and parameters stay graph-internal metadata.
var includedSymbolKinds = map[types.SymbolKind]bool{
	types.KindFunction: true,
	types.KindVariable: true,
	types.KindArray:    true,
}

// Build projects snap + diags into a Graph. Error-matching is by file
// basename, not full path, per spec.md §4.5's documented limitation.
func Build(snap *graph.Snapshot, diags []types.Diagnostic) Graph {
	errorFiles := map[string]bool{}
	errorLines := map[string]bool{} // key: basename + "\x00" + line
	for _, d := range diags {
		base := filepath.Base(d.File)
		errorFiles[base] = true
		errorLines[errLineKey(base, d.Line)] = true
	}

	var g Graph
	fileNodeID := func(f string) string { return "file:" + f }
	symbolNodeID := func(s *types.Symbol) string { return "symbol:" + s.ID.String() }

	for file := range snap.Files {
		base := filepath.Base(file)
		g.Nodes = append(g.Nodes, Node{
			ID: fileNodeID(file), Kind: NodeFile, Label: base, File: file,
			HasErrors: errorFiles[base],
		})
	}

	var symbolNodes []*types.Symbol
	byName := map[string][]*types.Symbol{}
	for _, s := range snap.AllSymbols() {
		if !includedSymbolKinds[s.Kind] {
			continue
		}
		symbolNodes = append(symbolNodes, s)
		byName[s.Name] = append(byName[s.Name], s)
	}

	for _, s := range symbolNodes {
		base := filepath.Base(s.File)
		g.Nodes = append(g.Nodes, Node{
			ID: symbolNodeID(s), Kind: NodeSymbol, Label: s.Name, File: s.File, Line: s.Line,
			SymbolKind: s.Kind, HasErrors: errorLines[errLineKey(base, s.Line)],
		})
		g.Edges = append(g.Edges, Edge{Kind: EdgeBelongsTo, From: symbolNodeID(s), To: fileNodeID(s.File)})
	}

	seenEdge := map[[2]string]bool{}
	for _, group := range byName {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.File == b.File {
					continue
				}
				idA, idB := symbolNodeID(a), symbolNodeID(b)
				key := [2]string{idA, idB}
				if seenEdge[key] {
					continue
				}
				seenEdge[key] = true
				g.Edges = append(g.Edges, Edge{Kind: EdgeReferences, From: idA, To: idB})
			}
		}
	}

	return g
}

func errLineKey(base string, line int) string {
	return base + "\x00" + strconv.Itoa(line)
}
