package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/snipe-dev/snipe/internal/types"
)

// arrayAccessPattern matches `name[index]` textually: identifier, open
// bracket, an optional sign and digits or a bare identifier, close bracket.
// Used only as a fallback over raw source text when the grammar's own walk
// missed a subscript — typically because the buffer is mid-edit and the
// surrounding statement doesn't parse as a complete call_expression/
// subscript_expression tree. spec.md §4.1 scopes this supplement to
// array-access statements only: it must never synthesize a symbol
// definition, and it only ever adds UseArrayAccess references.
var arrayAccessPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\[\s*(-?\d+|[A-Za-z_][A-Za-z0-9_]*)\s*\]`)

// regexFallbackArrayAccess scans content line by line for array-access
// syntax the grammar walk in c.go didn't already emit a reference for on
// that exact (name, line), and returns the references to add. This never
// replaces the grammar-driven pass — it only fills gaps that pass left, such
// as subscripts on lines that did not parse as complete statements. Callers
// pass declared-array sites in existing as well, so a declarator is not
// mistaken for an access.
func regexFallbackArrayAccess(file string, content []byte, existing []types.Reference) []types.Reference {
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.Kind == types.UseArrayAccess {
			seen[arrayAccessKey(r.Name, r.Line)] = true
		}
	}

	var out []types.Reference
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lineNo := i + 1
		for _, m := range arrayAccessPattern.FindAllStringSubmatch(line, -1) {
			name, idxText := m[1], m[2]
			if seen[arrayAccessKey(name, lineNo)] {
				continue
			}
			seen[arrayAccessKey(name, lineNo)] = true

			ref := types.Reference{
				Name: name, Kind: types.UseArrayAccess,
				File: file, Line: lineNo, Language: types.LangC,
				Scope: types.ScopeFunction,
			}
			if v, err := strconv.Atoi(idxText); err == nil {
				ref.IndexLiteral, ref.IndexIsLiteral = v, true
			}
			out = append(out, ref)
		}
	}
	return out
}

func arrayAccessKey(name string, line int) string {
	return name + "\x00" + strconv.Itoa(line)
}
