package rules

import (
	"fmt"
	"strings"

	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/types"
)

// ruleFormat is R-FORMAT (C, ERROR): a printf-family call with a literal
// format string whose conversion-specifier count disagrees with the number
// of variadic arguments supplied.
func ruleFormat(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Kind != types.UseFormatCall || !ref.HasFormatLiteral {
			continue
		}
		specs := countSpecifiers(ref.FormatLiteral)
		if specs != ref.ArgCount {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeFormatString,
				Message: fmt.Sprintf("%d specifiers, %d argument", specs, ref.ArgCount),
			})
		}
	}
	return out
}

// countSpecifiers counts printf conversion specifiers in a literal format
// string: "%[flags][width][.precision][length]conv"; "%%" never counts.
// Length modifiers are parsed and discarded for the count (spec.md §9 open
// question (c)): they only affect type compatibility, which this engine
// doesn't check.
func countSpecifiers(lit string) int {
	const flags = "-+ 0#"
	const lengthMods = "hlLqjzt"
	count := 0
	i := 0
	for i < len(lit) {
		if lit[i] != '%' {
			i++
			continue
		}
		i++
		if i >= len(lit) {
			break
		}
		if lit[i] == '%' {
			i++
			continue
		}
		for i < len(lit) && strings.IndexByte(flags, lit[i]) >= 0 {
			i++
		}
		for i < len(lit) && lit[i] >= '0' && lit[i] <= '9' {
			i++
		}
		if i < len(lit) && lit[i] == '.' {
			i++
			for i < len(lit) && lit[i] >= '0' && lit[i] <= '9' {
				i++
			}
		}
		for i < len(lit) && strings.IndexByte(lengthMods, lit[i]) >= 0 {
			i++
		}
		if i >= len(lit) {
			break
		}
		// conversion char itself
		i++
		count++
	}
	return count
}

// ruleStruct is R-STRUCT (C, ERROR): receiver.member or receiver->member
// where the receiver's apparent type resolves to a known struct lacking
// that member.
func ruleStruct(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Language != types.LangC || ref.Kind != types.UseMemberAccess || ref.ReceiverType == types.Unknown {
			continue
		}
		structName := strings.TrimSuffix(string(ref.ReceiverType), "*")
		structName = strings.TrimSpace(strings.TrimPrefix(structName, "struct"))
		canon, ok := canonicalExcluding(merged, types.LangC, structName, "", -1, func(k types.SymbolKind) bool {
			return k == types.KindStruct
		})
		if !ok {
			continue
		}
		found := false
		for _, m := range canon.StructMembers {
			if m.Name == ref.Member {
				found = true
				break
			}
		}
		if !found {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeStructAccess,
				Message: fmt.Sprintf("%s has no member %s", canon.Name, ref.Member),
			})
		}
	}
	return out
}

// ruleUnsafe is R-UNSAFE (C): every call to a name in the fixed unsafe
// table emits one diagnostic with that entry's rationale and replacement.
func ruleUnsafe(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Language != types.LangC || (ref.Kind != types.UseCall && ref.Kind != types.UseFormatCall) {
			continue
		}
		entry, ok := unsafeCFunctions[ref.Name]
		if !ok {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: ref.Line, Severity: entry.Severity, Code: types.CodeUnsafeFunction,
			Message: fmt.Sprintf("%s is unsafe: %s. Use %s instead.", entry.Name, entry.Rationale, entry.Replacement),
		})
	}
	return out
}
