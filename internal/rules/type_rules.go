package rules

import (
	"fmt"

	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/types"
)

// ruleTypeExtern is R-TYPE-EXTERN (C, ERROR): a buffer's extern declaration
// whose declared type disagrees with the canonical definition elsewhere.
func ruleTypeExtern(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, sym := range buf.Symbols {
		if sym.Language != types.LangC || sym.Kind != types.KindExtern {
			continue
		}
		canon, ok := canonicalExcluding(merged, types.LangC, sym.Name, file, -1, func(k types.SymbolKind) bool {
			return k != types.KindExtern
		})
		if !ok || canon.DeclaredType == sym.DeclaredType {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: sym.Line, Severity: types.SeverityError, Code: types.CodeTypeMismatch,
			Message: fmt.Sprintf("extern %s declared as %q here but defined as %q in %s:%d",
				sym.Name, sym.DeclaredType, canon.DeclaredType, canon.File, canon.Line),
		})
	}
	return out
}

// ruleTypeArrayWrite is R-TYPE-ARRAY-WRITE (C, ERROR): name[i] = expr where
// expr's apparent type isn't assignment-compatible with the array's element
// type.
func ruleTypeArrayWrite(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Language != types.LangC || ref.Kind != types.UseArrayAccess || ref.RHSType == "" {
			continue
		}
		canon, ok := canonicalExcluding(merged, types.LangC, ref.Name, "", -1, func(k types.SymbolKind) bool {
			return k == types.KindArray
		})
		if !ok || canon.DeclaredType == "" {
			continue
		}
		if !compatible(types.LangC, types.ApparentType(canon.DeclaredType), ref.RHSType) {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeTypeMismatch,
				Message: fmt.Sprintf("assigning %s to %s[...] declared %s in %s:%d",
					ref.RHSType, ref.Name, canon.DeclaredType, canon.File, canon.Line),
			})
		}
	}
	return out
}

// ruleTypeAssign is R-TYPE-ASSIGN (Python, ERROR): an annotated target
// assigned a literal RHS of an incompatible type.
func ruleTypeAssign(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Language != types.LangPython || ref.Kind != types.UseWrite || !ref.IsAnnotated {
			continue
		}
		if ref.RHSType == types.Unknown || ref.TargetDeclared == "" {
			continue
		}
		if !compatible(types.LangPython, types.ApparentType(ref.TargetDeclared), ref.RHSType) {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeTypeMismatch,
				Message: fmt.Sprintf("%s annotated %s but assigned %s", ref.Name, ref.TargetDeclared, ref.RHSType),
			})
		}
	}
	return out
}

// ruleTypeReturn is R-TYPE-RETURN (Python, ERROR): a return expression
// incompatible with its function's return annotation.
func ruleTypeReturn(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	funcsByName := map[string]*types.Symbol{}
	for i := range buf.Symbols {
		s := &buf.Symbols[i]
		if s.Kind == types.KindFunction {
			funcsByName[s.Name] = s
		}
	}

	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Language != types.LangPython || ref.Kind != types.UseReturn {
			continue
		}
		fn, ok := funcsByName[ref.EnclosingFunction]
		if !ok || fn.ReturnType == "" || ref.RHSType == types.Unknown {
			continue
		}
		if !compatible(types.LangPython, types.ApparentType(fn.ReturnType), ref.RHSType) {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeTypeMismatch,
				Message: fmt.Sprintf("%s declared to return %s but returns %s", fn.Name, fn.ReturnType, ref.RHSType),
			})
		}
	}
	return out
}

// ruleTypeCrossFile is R-TYPE-CROSS-FILE (Python, ERROR): a module-level
// annotated variable re-declared with a different annotation elsewhere in
// the repo.
func ruleTypeCrossFile(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, sym := range buf.Symbols {
		if sym.Language != types.LangPython || sym.Kind != types.KindVariable || sym.Scope != types.ScopeModule || sym.DeclaredType == "" {
			continue
		}
		canon, ok := canonicalExcluding(merged, types.LangPython, sym.Name, file, -1, func(k types.SymbolKind) bool {
			return k == types.KindVariable
		})
		if !ok || canon.DeclaredType == "" || canon.DeclaredType == sym.DeclaredType {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: sym.Line, Severity: types.SeverityError, Code: types.CodeTypeMismatch,
			Message: fmt.Sprintf("%s annotated %s here but %s in canonical declaration %s:%d",
				sym.Name, sym.DeclaredType, canon.DeclaredType, canon.File, canon.Line),
		})
	}
	return out
}
