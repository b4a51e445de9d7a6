package rules

import (
	"fmt"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/types"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity before a "did
// you mean" candidate is offered on an undefined-symbol diagnostic — an
// enrichment spec.md doesn't require but doesn't forbid either, since it
// rides along in the message text without adding a new code.
const suggestionThreshold = 0.84

// ruleUndefined is R-UNDEFINED (C & Python, WARNING): a name referenced but
// not found in the buffer, the repo graph, the language's builtin
// allowlist, or the file's own imports. Entirely suppressed if any symbol
// visible to this file carries star_import.
func ruleUndefined(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	starImport := false
	imported := map[string]bool{}
	for _, sym := range buf.Symbols {
		if sym.Kind != types.KindImport {
			continue
		}
		if sym.StarImport {
			starImport = true
		}
		imported[sym.Name] = true
		for _, n := range sym.ImportedNames {
			imported[n] = true
		}
	}
	if starImport {
		return nil
	}

	local := localSymbolsByName(buf)
	allowlist := pythonBuiltins
	if buf.Language == types.LangC {
		allowlist = cStdlibAllowlist
	}

	seen := map[string]bool{}
	var out []types.Diagnostic
	for _, ref := range buf.References {
		switch ref.Kind {
		case types.UseCall, types.UseFormatCall, types.UseRead, types.UseMemberAccess, types.UseArrayAccess:
		default:
			continue
		}
		name := ref.Name
		if seen[name] {
			continue
		}
		if _, ok := local[name]; ok {
			continue
		}
		if merged.Exists(ref.Language, name) {
			continue
		}
		if allowlist[name] {
			continue
		}
		if ref.Language == types.LangPython && imported[name] {
			continue
		}
		seen[name] = true

		msg := fmt.Sprintf("%s is not declared in this file or anywhere in the repo", name)
		if s, ok := suggest(name, candidateNames(local, merged, ref.Language)); ok {
			msg += fmt.Sprintf(" (did you mean %s?)", s)
		}
		out = append(out, types.Diagnostic{
			File: file, Line: ref.Line, Severity: types.SeverityWarning, Code: types.CodeUndefinedSymbol,
			Message: msg,
		})
	}
	return out
}

func candidateNames(local map[string][]*types.Symbol, merged *graph.Snapshot, lang types.Language) []string {
	seen := map[string]bool{}
	var out []string
	for n := range local {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, s := range merged.AllSymbols() {
		if s.Language != lang || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s.Name)
	}
	return out
}

// suggest finds the closest candidate to name by Jaro-Winkler similarity
// over stemmed forms, returning it only above suggestionThreshold.
func suggest(name string, candidates []string) (string, bool) {
	stem := porter2.Stem(name)
	best := ""
	bestScore := float32(0)
	for _, c := range candidates {
		if c == name {
			continue
		}
		score, err := edlib.StringsSimilarity(stem, porter2.Stem(c), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == "" || bestScore < suggestionThreshold {
		return "", false
	}
	return best, true
}

// ruleShadow is R-SHADOW (Python, WARNING): a function-scope assignment
// target whose name also exists as a module-level symbol in the same file.
func ruleShadow(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	moduleLevel := map[string]bool{}
	for _, sym := range buf.Symbols {
		if sym.Language == types.LangPython && sym.Scope == types.ScopeModule {
			moduleLevel[sym.Name] = true
		}
	}

	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Language != types.LangPython || ref.Kind != types.UseWrite || ref.Scope != types.ScopeFunction {
			continue
		}
		if !moduleLevel[ref.Name] {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: ref.Line, Severity: types.SeverityWarning, Code: types.CodeShadowedSymbol,
			Message: fmt.Sprintf("%s shadows a module-level symbol of the same name", ref.Name),
		})
	}
	return out
}

// ruleDeadImport is R-DEAD-IMPORT (Python, WARNING): an imported name with
// zero references in the file. Star imports are never dead.
func ruleDeadImport(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, sym := range buf.Symbols {
		if sym.Language != types.LangPython || sym.Kind != types.KindImport || sym.StarImport {
			continue
		}
		if sym.ReferencesInFile > 0 {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: sym.Line, Severity: types.SeverityWarning, Code: types.CodeDeadImport,
			Message: fmt.Sprintf("%s is imported but never used in this file", sym.Name),
		})
	}
	return out
}

// ruleUnusedExtern is R-UNUSED-EXTERN (C, WARNING): an extern declaration
// with zero references in the file.
func ruleUnusedExtern(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, sym := range buf.Symbols {
		if sym.Language != types.LangC || sym.Kind != types.KindExtern {
			continue
		}
		if sym.ReferencesInFile > 0 {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: sym.Line, Severity: types.SeverityWarning, Code: types.CodeUnusedExtern,
			Message: fmt.Sprintf("extern %s is never referenced in this file", sym.Name),
		})
	}
	return out
}
