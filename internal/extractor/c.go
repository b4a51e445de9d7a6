package extractor

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/snipe-dev/snipe/internal/types"
)

// CExtractor implements Extractor for .c/.h files, parsed with the C++
// grammar (see internal/parser.New).
type CExtractor struct{}

func NewC() *CExtractor { return &CExtractor{} }

func (CExtractor) Language() types.Language { return types.LangC }

func (c CExtractor) Extract(file string, content []byte, tree *sitter.Tree) types.Extraction {
	ext := types.Extraction{File: file, Language: types.LangC}
	if tree == nil {
		return ext
	}
	root := tree.RootNode()
	lt := newLocalTypes()

	sm := NewScopeManager()
	c.walkDecls(root, content, sm, lt, &ext)

	sm2 := NewScopeManager()
	c.walkRefs(root, content, sm2, lt, &ext)

	// Declared array sites count as covered so the fallback never reads a
	// declarator such as `int a[10]` as an access.
	covered := append([]types.Reference(nil), ext.References...)
	for _, s := range ext.Symbols {
		if s.Kind == types.KindArray {
			covered = append(covered, types.Reference{Name: s.Name, Kind: types.UseArrayAccess, Line: s.Line})
		}
	}
	for _, ref := range regexFallbackArrayAccess(file, content, covered) {
		ext.References = append(ext.References, ref)
	}

	annotateReferenceCounts(&ext)
	return ext
}

func (c CExtractor) walkDecls(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_definition":
		c.declFunction(node, content, sm, lt, ext)
		return
	case "struct_specifier":
		c.declStruct(node, content, sm, ext)
	case "declaration":
		c.declTopLevel(node, content, sm, lt, ext)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		c.walkDecls(node.Child(i), content, sm, lt, ext)
	}
}

func (c CExtractor) declFunction(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	declarator := node.ChildByFieldName("declarator")
	fnDeclarator, name := unwrapFunctionDeclarator(declarator, content)
	if fnDeclarator == nil || name == "" {
		return
	}

	returnType := declaredTypeText(node, content)

	sym := types.Symbol{
		ID:         types.SymbolID{Language: types.LangC, File: ext.File, Line: Line(node), Name: name},
		Name:       name,
		Language:   types.LangC,
		File:       ext.File,
		Line:       Line(node),
		Kind:       types.KindFunction,
		ReturnType: returnType,
		Scope:      sm.Current(),
	}

	if params := FindChildByType(fnDeclarator, "parameter_list"); params != nil {
		sym.Params, sym.VarargsFlag = c.extractParams(params, content)
	}

	lt.funcs[name] = returnType
	ext.Symbols = append(ext.Symbols, sym)

	sm.Push(types.ScopeFunction, name)
	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			c.walkDecls(body.Child(i), content, sm, lt, ext)
		}
	}
	sm.Pop()
}

// unwrapFunctionDeclarator finds the function_declarator inside a possibly
// pointer-wrapped declarator (e.g. `char *name(...)`) and returns it with the
// function's name.
func unwrapFunctionDeclarator(node *sitter.Node, content []byte) (*sitter.Node, string) {
	for node != nil {
		switch node.Kind() {
		case "function_declarator":
			nameNode := node.ChildByFieldName("declarator")
			return node, GetNodeText(nameNode, content)
		case "pointer_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return nil, ""
		}
	}
	return nil, ""
}

func (c CExtractor) extractParams(params *sitter.Node, content []byte) ([]types.Param, bool) {
	var out []types.Param
	varargs := false
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		if p == nil {
			continue
		}
		switch p.Kind() {
		case "parameter_declaration":
			declNode := p.ChildByFieldName("declarator")
			name := identifierName(declNode, content)
			out = append(out, types.Param{Name: name, AnnotatedType: declaredTypeText(p, content)})
		case "variadic_parameter":
			varargs = true
		}
	}
	return out, varargs
}

// identifierName recovers the bare name from a (possibly pointer/array
// wrapped) declarator node.
func identifierName(node *sitter.Node, content []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier":
			return GetNodeText(node, content)
		case "pointer_declarator", "array_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return GetNodeText(node, content)
		}
	}
	return ""
}

// declaredTypeText renders a declaration/parameter_declaration node's type
// as text: the declared type specifier plus pointer stars, whitespace
// normalized.
func declaredTypeText(declNode *sitter.Node, content []byte) string {
	typeNode := declNode.ChildByFieldName("type")
	base := GetNodeText(typeNode, content)
	declarator := declNode.ChildByFieldName("declarator")
	stars := 0
	for declarator != nil && declarator.Kind() == "pointer_declarator" {
		stars++
		declarator = declarator.ChildByFieldName("declarator")
	}
	if stars == 0 {
		return string(normalizeCType(base))
	}
	return string(normalizeCType(base)) + strings.Repeat("*", stars)
}

func (c CExtractor) declStruct(node *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	nameNode := node.ChildByFieldName("name")
	name := GetNodeText(nameNode, content)
	body := node.ChildByFieldName("body")
	if name == "" || body == nil {
		return
	}

	var members []types.StructMember
	for i := uint(0); i < body.ChildCount(); i++ {
		field := body.Child(i)
		if field == nil || field.Kind() != "field_declaration" {
			continue
		}
		declarator := field.ChildByFieldName("declarator")
		memberName := identifierName(declarator, content)
		if memberName == "" {
			continue
		}
		members = append(members, types.StructMember{Name: memberName, Type: declaredTypeText(field, content)})
	}

	ext.Symbols = append(ext.Symbols, types.Symbol{
		ID:            types.SymbolID{Language: types.LangC, File: ext.File, Line: Line(nameNode), Name: name},
		Name:          name,
		Language:      types.LangC,
		File:          ext.File,
		Line:          Line(nameNode),
		Kind:          types.KindStruct,
		Scope:         sm.Current(),
		StructMembers: members,
	})
}

func (c CExtractor) declTopLevel(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	isExtern := false
	for i := uint(0); i < node.ChildCount(); i++ {
		if ch := node.Child(i); ch != nil && ch.Kind() == "storage_class_specifier" && GetNodeText(ch, content) == "extern" {
			isExtern = true
		}
	}

	declarators := FindChildrenByType(node, "init_declarator")
	if len(declarators) == 0 {
		declarators = append(declarators, node)
	}

	for _, d := range declarators {
		declarator := d
		if d.Kind() == "init_declarator" {
			declarator = d.ChildByFieldName("declarator")
		} else {
			declarator = d.ChildByFieldName("declarator")
		}
		if declarator == nil {
			continue
		}

		if declarator.Kind() == "array_declarator" {
			c.declArray(node, declarator, d, content, sm, ext)
			continue
		}

		name := identifierName(declarator, content)
		if name == "" {
			continue
		}
		declaredType := declaredTypeText(node, content)
		lt.vars[name] = declaredType

		kind := types.KindVariable
		if isExtern {
			kind = types.KindExtern
		}
		ext.Symbols = append(ext.Symbols, types.Symbol{
			ID:           types.SymbolID{Language: types.LangC, File: ext.File, Line: Line(node), Name: name},
			Name:         name,
			Language:     types.LangC,
			File:         ext.File,
			Line:         Line(node),
			Kind:         kind,
			DeclaredType: declaredType,
			Scope:        sm.Current(),
		})
	}
}

func (c CExtractor) declArray(declNode, arrayDeclarator, initDeclarator *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	nameNode := arrayDeclarator.ChildByFieldName("declarator")
	name := GetNodeText(nameNode, content)
	if name == "" {
		return
	}

	sym := types.Symbol{
		ID:           types.SymbolID{Language: types.LangC, File: ext.File, Line: Line(declNode), Name: name},
		Name:         name,
		Language:     types.LangC,
		File:         ext.File,
		Line:         Line(declNode),
		Kind:         types.KindArray,
		DeclaredType: declaredTypeText(declNode, content),
		Scope:        sm.Current(),
	}

	if sizeNode := arrayDeclarator.ChildByFieldName("size"); sizeNode != nil {
		if v, ok := literalIntValue(sizeNode, content); ok {
			sym.ArraySize = &v
		}
	} else if initDeclarator != nil && initDeclarator.Kind() == "init_declarator" {
		if init := initDeclarator.ChildByFieldName("value"); init != nil && init.Kind() == "initializer_list" {
			n := countElements(init)
			sym.ArraySize = &n
		}
	}

	ext.Symbols = append(ext.Symbols, sym)
}

// --- reference pass -------------------------------------------------------

var formatArgIndex = map[string]int{
	"printf": 1, "fprintf": 2, "sprintf": 2, "snprintf": 3,
	"scanf": 1, "fscanf": 2, "sscanf": 2,
}

func (c CExtractor) walkRefs(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_definition":
		declarator := node.ChildByFieldName("declarator")
		_, name := unwrapFunctionDeclarator(declarator, content)
		sm.Push(types.ScopeFunction, name)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				c.walkRefs(body.Child(i), content, sm, lt, ext)
			}
		}
		sm.Pop()
		return
	case "call_expression":
		c.refCall(node, content, sm, lt, ext)
	case "subscript_expression":
		c.refSubscript(node, content, sm, ext)
	case "field_expression":
		c.refField(node, content, sm, lt, ext)
	case "assignment_expression":
		c.refAssignment(node, content, sm, lt, ext)
	case "return_statement":
		c.refReturn(node, content, sm, lt, ext)
	case "expression_statement":
		c.emitIdentifierRead(node.NamedChild(0), content, sm, ext)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		c.walkRefs(node.Child(i), content, sm, lt, ext)
	}
}

func (c CExtractor) refCall(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" {
		return
	}
	name := GetNodeText(fn, content)
	args := node.ChildByFieldName("arguments")

	var argTypes []types.ApparentType
	var argExprs []string
	count := 0
	if args != nil {
		for i := uint(0); i < args.ChildCount(); i++ {
			a := args.Child(i)
			if a == nil || !a.IsNamed() {
				continue
			}
			count++
			t, expr := resolveCExpr(a, content, lt)
			argTypes = append(argTypes, t)
			argExprs = append(argExprs, expr)
			c.emitIdentifierRead(a, content, sm, ext)
		}
	}

	if idx, ok := formatArgIndex[name]; ok {
		ref := types.Reference{
			Name: name, Kind: types.UseFormatCall, File: ext.File, Line: Line(node), Language: types.LangC,
			Scope: sm.Current(), ArgTypes: argTypes, ArgExprs: argExprs, ArgCount: count,
		}
		if args != nil {
			named := namedChildren(args)
			if idx-1 < len(named) && named[idx-1].Kind() == "string_literal" {
				ref.FormatLiteral = GetNodeText(named[idx-1], content)
				ref.HasFormatLiteral = true
			}
			if idx <= len(argTypes) {
				ref.ArgTypes = argTypes[idx:]
				ref.ArgExprs = argExprs[idx:]
				ref.ArgCount = count - idx
			}
		}
		ext.References = append(ext.References, ref)
		return
	}

	ext.References = append(ext.References, types.Reference{
		Name: name, Kind: types.UseCall, File: ext.File, Line: Line(node), Language: types.LangC,
		Scope: sm.Current(), ArgTypes: argTypes, ArgExprs: argExprs, ArgCount: count,
	})
}

// emitIdentifierRead records a bare-identifier value use (call argument,
// assignment RHS, return expression, standalone expression statement) as a
// UseRead reference, so ruleUndefined sees it even though the containing
// construct (call, assignment, return) is tracked under its own Kind.
func (c CExtractor) emitIdentifierRead(node *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	if node == nil || node.Kind() != "identifier" {
		return
	}
	ext.References = append(ext.References, types.Reference{
		Name: GetNodeText(node, content), Kind: types.UseRead,
		File: ext.File, Line: Line(node), Language: types.LangC, Scope: sm.Current(),
	})
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

func (c CExtractor) refSubscript(node *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	arr := node.ChildByFieldName("argument")
	idxNode := node.ChildByFieldName("index")
	if arr == nil || arr.Kind() != "identifier" {
		return
	}
	ref := types.Reference{
		Name: GetNodeText(arr, content), Kind: types.UseArrayAccess,
		File: ext.File, Line: Line(node), Language: types.LangC, Scope: sm.Current(),
	}
	if idxNode != nil {
		target := idxNode
		negate := false
		if idxNode.Kind() == "unary_expression" {
			if op := idxNode.ChildByFieldName("operator"); op != nil && GetNodeText(op, content) == "-" {
				negate = true
			}
			target = idxNode.ChildByFieldName("argument")
		}
		if v, ok := literalIntValue(target, content); ok {
			if negate {
				v = -v
			}
			ref.IndexLiteral, ref.IndexIsLiteral = v, true
		}
	}
	ext.References = append(ext.References, ref)
}

func (c CExtractor) refField(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	arg := node.ChildByFieldName("argument")
	field := node.ChildByFieldName("field")
	if arg == nil || field == nil {
		return
	}
	recvType, _ := resolveCExpr(arg, content, lt)
	ext.References = append(ext.References, types.Reference{
		Name: GetNodeText(arg, content), Kind: types.UseMemberAccess,
		File: ext.File, Line: Line(node), Language: types.LangC, Scope: sm.Current(),
		ReceiverType: recvType, Member: GetNodeText(field, content),
	})
}

func (c CExtractor) refAssignment(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}

	switch left.Kind() {
	case "identifier":
		rhsType, rhsExpr := resolveCExpr(right, content, lt)
		c.emitIdentifierRead(right, content, sm, ext)
		ext.References = append(ext.References, types.Reference{
			Name: GetNodeText(left, content), Kind: types.UseWrite,
			File: ext.File, Line: Line(node), Language: types.LangC, Scope: sm.Current(),
			RHSType: rhsType, RHSExpr: rhsExpr,
		})
	case "subscript_expression":
		arr := left.ChildByFieldName("argument")
		if arr == nil || arr.Kind() != "identifier" {
			return
		}
		rhsType, rhsExpr := resolveCExpr(right, content, lt)
		c.emitIdentifierRead(right, content, sm, ext)
		ref := types.Reference{
			Name: GetNodeText(arr, content), Kind: types.UseArrayAccess,
			File: ext.File, Line: Line(node), Language: types.LangC, Scope: sm.Current(),
			RHSType: rhsType, RHSExpr: rhsExpr,
		}
		if idxNode := left.ChildByFieldName("index"); idxNode != nil {
			if v, ok := literalIntValue(idxNode, content); ok {
				ref.IndexLiteral, ref.IndexIsLiteral = v, true
			}
		}
		ext.References = append(ext.References, ref)
	}
}

func (c CExtractor) refReturn(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	expr := node.NamedChild(0)
	if expr == nil {
		return
	}
	t, rawExpr := resolveCExpr(expr, content, lt)
	c.emitIdentifierRead(expr, content, sm, ext)
	ext.References = append(ext.References, types.Reference{
		Name: "return", Kind: types.UseReturn,
		File: ext.File, Line: Line(node), Language: types.LangC, Scope: sm.Current(),
		RHSType: t, RHSExpr: rawExpr, EnclosingFunction: sm.CurrentFunction(),
	})
}
