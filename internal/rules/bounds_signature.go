package rules

import (
	"fmt"

	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/types"
)

// ruleBounds is R-BOUNDS (C & Python, ERROR): a literal subscript outside
// [0, array_size).
func ruleBounds(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Kind != types.UseArrayAccess || !ref.IndexIsLiteral {
			continue
		}
		canon, ok := canonicalExcluding(merged, ref.Language, ref.Name, "", -1, func(k types.SymbolKind) bool {
			return k == types.KindArray
		})
		if !ok || canon.ArraySize == nil {
			continue
		}
		n := *canon.ArraySize
		if ref.IndexLiteral < 0 || ref.IndexLiteral >= n {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeArrayBounds,
				Message: fmt.Sprintf("Index %d exceeds declared size %d in %s:%d",
					ref.IndexLiteral, n, canon.File, canon.Line),
			})
		}
	}
	return out
}

// ruleSignature is R-SIGNATURE (C & Python, ERROR): a call whose argument
// count falls outside the canonical function's accepted range.
func ruleSignature(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Kind != types.UseCall && ref.Kind != types.UseFormatCall {
			continue
		}
		funcs := merged.LookupFunction(ref.Language, ref.Name)
		if len(funcs) == 0 {
			continue
		}
		canon := funcs[0]
		min, max, unbounded := canon.MinMaxArgs()
		if ref.ArgCount < min || (!unbounded && ref.ArgCount > max) {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeSignatureDrift,
				Message: fmt.Sprintf("%s expects %s got %d", ref.Name, describeArity(min, max, unbounded), ref.ArgCount),
			})
		}
	}
	return out
}

func describeArity(min, max int, unbounded bool) string {
	if unbounded {
		if min == max {
			return fmt.Sprintf("at least %d", min)
		}
		return fmt.Sprintf("at least %d", min)
	}
	if min == max {
		return fmt.Sprintf("%d", min)
	}
	return fmt.Sprintf("%d to %d", min, max)
}

// ruleArgType is R-ARG-TYPE (Python, ERROR): a positional argument
// incompatible with its parameter's annotation.
func ruleArgType(file string, buf types.Extraction, merged *graph.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range buf.References {
		if ref.Language != types.LangPython || ref.Kind != types.UseCall {
			continue
		}
		funcs := merged.LookupFunction(types.LangPython, ref.Name)
		if len(funcs) == 0 {
			continue
		}
		canon := funcs[0]
		for i, argType := range ref.ArgTypes {
			if i >= len(canon.Params) || argType == types.Unknown {
				continue
			}
			param := canon.Params[i]
			if param.AnnotatedType == "" {
				continue
			}
			if !compatible(types.LangPython, types.ApparentType(param.AnnotatedType), argType) {
				out = append(out, types.Diagnostic{
					File: file, Line: ref.Line, Severity: types.SeverityError, Code: types.CodeArgTypeMismatch,
					Message: fmt.Sprintf("%s argument %d (%s) expects %s got %s",
						ref.Name, i+1, param.Name, param.AnnotatedType, argType),
				})
			}
		}
	}
	return out
}
