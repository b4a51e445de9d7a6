// Package rules is the analysis rules engine (spec.md §4.4): the fixed,
// language-scoped family of checks that joins one buffer's references
// against a repo graph snapshot to produce diagnostics. Rules never mutate
// the snapshot or the buffer; every rule function is a pure
// (buffer, snapshot) -> diagnostics map.
package rules

import (
	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/types"
)

// ruleFunc is the shape every check in the fixed set implements.
type ruleFunc func(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic

// allRules is the closed rule set from spec.md §4.4. Order never affects
// correctness (P6); it only affects diagnostic ordering before dedup.
var allRules = []ruleFunc{
	ruleTypeExtern,
	ruleTypeArrayWrite,
	ruleTypeAssign,
	ruleTypeReturn,
	ruleTypeCrossFile,
	ruleBounds,
	ruleSignature,
	ruleArgType,
	ruleUndefined,
	ruleShadow,
	ruleDeadImport,
	ruleUnusedExtern,
	ruleFormat,
	ruleStruct,
	ruleUnsafe,
}

// Run evaluates the full rule set for one buffer against a repo snapshot.
// Per spec.md §4.4 the buffer's own symbols override the repo graph's
// on-disk view of the same file for this call — WithOverlay gives every
// rule that for free by swapping the buffer's extraction into the merged
// view before any lookup happens.
func Run(file string, buf types.Extraction, snap *graph.Snapshot) []types.Diagnostic {
	merged := snap.WithOverlay(map[string]*types.Extraction{file: &buf})

	var out []types.Diagnostic
	for _, r := range allRules {
		// A rule panicking on one malformed reference must not poison the
		// whole analysis (spec.md §7's failure-isolation guarantee).
		out = append(out, safeRun(r, file, buf, merged)...)
	}
	return types.Dedup(out)
}

func safeRun(r ruleFunc, file string, buf types.Extraction, merged *graph.Snapshot) (diags []types.Diagnostic) {
	defer func() {
		if recover() != nil {
			diags = nil
		}
	}()
	return r(file, buf, merged)
}

// canonical returns the first (lexicographically-earliest-file) symbol
// named name for lang, excluding the declaration at (file, line) itself
// when selfFile/selfLine are given as the buffer's own site — used by
// rules that look for a *different* defining site than the one under
// inspection. Pass selfLine < 0 to not exclude by line.
func canonicalExcluding(merged *graph.Snapshot, lang types.Language, name, selfFile string, selfLine int, kindFilter func(types.SymbolKind) bool) (*types.Symbol, bool) {
	for _, s := range merged.Lookup(lang, name) {
		if selfFile != "" && s.File == selfFile && (selfLine < 0 || s.Line == selfLine) {
			continue
		}
		if kindFilter != nil && !kindFilter(s.Kind) {
			continue
		}
		return s, true
	}
	return nil, false
}

func localSymbolsByName(buf types.Extraction) map[string][]*types.Symbol {
	m := make(map[string][]*types.Symbol, len(buf.Symbols))
	for i := range buf.Symbols {
		s := &buf.Symbols[i]
		m[s.Name] = append(m[s.Name], s)
	}
	return m
}
