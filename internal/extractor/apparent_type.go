package extractor

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/snipe-dev/snipe/internal/types"
)

// localTypes is the file-local name -> declared-type table an extractor
// builds while walking declarations, used to resolve identifier references
// without a repo lookup (spec.md §4.2: "identifiers resolved to their
// declared type in the current scope then the repo" — the "then the repo"
// half is internal/rules' job when this returns Unknown for a bare name).
type localTypes struct {
	vars  map[string]string // name -> declared_type
	funcs map[string]string // name -> return_type
}

func newLocalTypes() *localTypes {
	return &localTypes{vars: map[string]string{}, funcs: map[string]string{}}
}

// pythonLiteralType returns the apparent type of a Python literal node, or
// Unknown if node isn't a literal this engine recognizes.
func pythonLiteralType(node *sitter.Node) types.ApparentType {
	if node == nil {
		return types.Unknown
	}
	switch node.Kind() {
	case "integer":
		return "int"
	case "float":
		return "float"
	case "string", "concatenated_string":
		return "str"
	case "true", "false":
		return "bool"
	case "list":
		return "list"
	case "tuple":
		return "tuple"
	case "dictionary":
		return "dict"
	case "set":
		return "set"
	default:
		return types.Unknown
	}
}

// resolvePythonExpr guesses an expression's apparent type and, when it's a
// bare identifier the file-local table doesn't know either, returns the
// identifier text so internal/rules can try the repo graph.
func resolvePythonExpr(node *sitter.Node, content []byte, lt *localTypes) (types.ApparentType, string) {
	if node == nil {
		return types.Unknown, ""
	}
	if t := pythonLiteralType(node); t != types.Unknown {
		return t, ""
	}
	switch node.Kind() {
	case "identifier":
		name := GetNodeText(node, content)
		if t, ok := lt.vars[name]; ok {
			return pythonAnnotationToType(t), ""
		}
		return types.Unknown, name
	case "call":
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Kind() == "identifier" {
			name := GetNodeText(fn, content)
			if rt, ok := lt.funcs[name]; ok && rt != "" {
				return pythonAnnotationToType(rt), ""
			}
		}
		return types.Unknown, ""
	case "unary_operator":
		// -5, -3.14: recurse on the operand.
		for i := uint(0); i < node.ChildCount(); i++ {
			c := node.Child(i)
			if c != nil && c.IsNamed() {
				return resolvePythonExpr(c, content, lt)
			}
		}
		return types.Unknown, ""
	default:
		return types.Unknown, ""
	}
}

// pythonAnnotationToType normalizes a type annotation's textual form to the
// compatibility table's vocabulary (int/float/str/bool/list/tuple/dict/set);
// annotations outside that vocabulary (e.g. a custom class) pass through
// unchanged, which means the compatibility table simply never has an entry
// for them and the comparison always reports "incompatible" only in
// practice when both sides disagree.
func pythonAnnotationToType(raw string) types.ApparentType {
	raw = strings.TrimSpace(raw)
	// Strip common container generics' bracket payloads for the
	// compatibility check's purposes: List[int] -> list.
	if idx := strings.IndexByte(raw, '['); idx >= 0 {
		raw = raw[:idx]
	}
	switch raw {
	case "List":
		raw = "list"
	case "Tuple":
		raw = "tuple"
	case "Dict":
		raw = "dict"
	case "Set":
		raw = "set"
	case "Optional":
		return types.Unknown
	}
	return types.ApparentType(raw)
}

// cLiteralType returns the apparent type of a C literal node.
func cLiteralType(node *sitter.Node, content []byte) types.ApparentType {
	if node == nil {
		return types.Unknown
	}
	switch node.Kind() {
	case "number_literal":
		text := GetNodeText(node, content)
		if strings.ContainsAny(text, ".eE") && !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
			return "float"
		}
		return "int"
	case "char_literal":
		return "char"
	case "string_literal":
		return "char*"
	case "true", "false":
		return "int" // C has no bool literal in the grammar sense pre-stdbool typing
	default:
		return types.Unknown
	}
}

func resolveCExpr(node *sitter.Node, content []byte, lt *localTypes) (types.ApparentType, string) {
	if node == nil {
		return types.Unknown, ""
	}
	if t := cLiteralType(node, content); t != types.Unknown {
		return t, ""
	}
	switch node.Kind() {
	case "identifier":
		name := GetNodeText(node, content)
		if t, ok := lt.vars[name]; ok {
			return normalizeCType(t), ""
		}
		return types.Unknown, name
	case "call_expression":
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Kind() == "identifier" {
			name := GetNodeText(fn, content)
			if rt, ok := lt.funcs[name]; ok && rt != "" {
				return normalizeCType(rt), ""
			}
		}
		return types.Unknown, ""
	default:
		return types.Unknown, ""
	}
}

// normalizeCType collapses whitespace in a declared C type so "int " and
// "int" compare equal, per R-TYPE-EXTERN's textual-normalization rule.
func normalizeCType(raw string) types.ApparentType {
	fields := strings.Fields(raw)
	return types.ApparentType(strings.Join(fields, " "))
}

// literalIntValue parses a decimal/hex integer literal's value; used for
// array-index and array-size extraction. Negative numbers arrive wrapped in
// a unary_operator node and must be unwrapped by the caller first.
func literalIntValue(node *sitter.Node, content []byte) (int, bool) {
	if node == nil {
		return 0, false
	}
	text := strings.TrimSpace(GetNodeText(node, content))
	text = strings.TrimSuffix(strings.TrimSuffix(text, "L"), "l")
	text = strings.TrimSuffix(strings.TrimSuffix(text, "U"), "u")
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
