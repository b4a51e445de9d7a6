package extractor

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/snipe-dev/snipe/internal/types"
)

// PythonExtractor implements Extractor for .py files.
type PythonExtractor struct{}

func NewPython() *PythonExtractor { return &PythonExtractor{} }

func (PythonExtractor) Language() types.Language { return types.LangPython }

func (p PythonExtractor) Extract(file string, content []byte, tree *sitter.Tree) types.Extraction {
	ext := types.Extraction{File: file, Language: types.LangPython}
	if tree == nil {
		return ext
	}
	root := tree.RootNode()
	lt := newLocalTypes()

	sm := NewScopeManager()
	p.walkDecls(root, content, sm, lt, &ext)

	sm2 := NewScopeManager()
	p.walkRefs(root, content, sm2, lt, &ext)

	annotateReferenceCounts(&ext)
	return ext
}

func (p PythonExtractor) walkDecls(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_definition":
		p.declFunction(node, content, sm, lt, ext)
		return
	case "class_definition":
		name := GetNodeText(node.ChildByFieldName("name"), content)
		sm.Push(types.ScopeFunction, name)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				p.walkDecls(body.Child(i), content, sm, lt, ext)
			}
		}
		sm.Pop()
		return
	case "assignment":
		p.declAssignment(node, content, sm, lt, ext)
	case "import_statement":
		p.declImport(node, content, sm, ext)
	case "import_from_statement":
		p.declImportFrom(node, content, sm, ext)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		p.walkDecls(node.Child(i), content, sm, lt, ext)
	}
}

func (p PythonExtractor) declFunction(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	nameNode := node.ChildByFieldName("name")
	name := GetNodeText(nameNode, content)
	if name == "" {
		return
	}

	sym := types.Symbol{
		ID:       types.SymbolID{Language: types.LangPython, File: ext.File, Line: Line(nameNode), Name: name},
		Name:     name,
		Language: types.LangPython,
		File:     ext.File,
		Line:     Line(nameNode),
		Kind:     types.KindFunction,
		Scope:    sm.Current(),
	}

	if rt := node.ChildByFieldName("return_type"); rt != nil {
		sym.ReturnType = strings.TrimSpace(GetNodeText(rt, content))
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		sym.Params, sym.VarargsFlag, sym.KwargsFlag = p.extractParams(params, content)
	}

	lt.funcs[name] = sym.ReturnType
	ext.Symbols = append(ext.Symbols, sym)

	sm.Push(types.ScopeFunction, name)
	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			p.walkDecls(body.Child(i), content, sm, lt, ext)
		}
	}
	sm.Pop()
}

func (p PythonExtractor) extractParams(params *sitter.Node, content []byte) ([]types.Param, bool, bool) {
	var out []types.Param
	varargs, kwargs := false, false
	for i := uint(0); i < params.ChildCount(); i++ {
		c := params.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier":
			out = append(out, types.Param{Name: GetNodeText(c, content)})
		case "typed_parameter":
			id := FindChildByType(c, "identifier")
			tp := FindChildByType(c, "type")
			out = append(out, types.Param{Name: GetNodeText(id, content), AnnotatedType: strings.TrimSpace(GetNodeText(tp, content))})
		case "default_parameter":
			id := c.ChildByFieldName("name")
			val := c.ChildByFieldName("value")
			out = append(out, types.Param{Name: GetNodeText(id, content), Default: GetNodeText(val, content)})
		case "typed_default_parameter":
			id := c.ChildByFieldName("name")
			tp := c.ChildByFieldName("type")
			val := c.ChildByFieldName("value")
			out = append(out, types.Param{
				Name:          GetNodeText(id, content),
				AnnotatedType: strings.TrimSpace(GetNodeText(tp, content)),
				Default:       GetNodeText(val, content),
			})
		case "list_splat_pattern":
			varargs = true
		case "dictionary_splat_pattern":
			kwargs = true
		}
	}
	return out, varargs, kwargs
}

func (p PythonExtractor) declAssignment(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	annotation := node.ChildByFieldName("type")
	if left == nil || left.Kind() != "identifier" {
		return
	}
	name := GetNodeText(left, content)

	if annotation != nil {
		declared := strings.TrimSpace(GetNodeText(annotation, content))
		lt.vars[name] = declared
		ext.Symbols = append(ext.Symbols, types.Symbol{
			ID:           types.SymbolID{Language: types.LangPython, File: ext.File, Line: Line(left), Name: name},
			Name:         name,
			Language:     types.LangPython,
			File:         ext.File,
			Line:         Line(left),
			Kind:         types.KindVariable,
			DeclaredType: declared,
			Scope:        sm.Current(),
		})
		return
	}

	if right != nil && (right.Kind() == "list" || right.Kind() == "tuple") && sm.Current() == types.ScopeModule {
		n := countElements(right)
		ext.Symbols = append(ext.Symbols, types.Symbol{
			ID:        types.SymbolID{Language: types.LangPython, File: ext.File, Line: Line(left), Name: name},
			Name:      name,
			Language:  types.LangPython,
			File:      ext.File,
			Line:      Line(left),
			Kind:      types.KindArray,
			ArraySize: &n,
			Scope:     sm.Current(),
		})
	}
}

func countElements(node *sitter.Node) int {
	n := 0
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.IsNamed() {
			n++
		}
	}
	return n
}

func (p PythonExtractor) declImport(node *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	var names []string
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "dotted_name":
			names = append(names, strings.SplitN(GetNodeText(c, content), ".", 2)[0])
		case "aliased_import":
			nameNode := c.ChildByFieldName("alias")
			if nameNode == nil {
				nameNode = FindChildByType(c, "dotted_name")
			}
			names = append(names, GetNodeText(nameNode, content))
		}
	}
	for _, n := range names {
		ext.Symbols = append(ext.Symbols, types.Symbol{
			ID:            types.SymbolID{Language: types.LangPython, File: ext.File, Line: Line(node), Name: n},
			Name:          n,
			Language:      types.LangPython,
			File:          ext.File,
			Line:          Line(node),
			Kind:          types.KindImport,
			Scope:         sm.Current(),
			ImportedNames: names,
		})
	}
}

func (p PythonExtractor) declImportFrom(node *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	star := FindChildByType(node, "wildcard_import") != nil
	var names []string
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "import_list":
			names = append(names, p.extractImportList(c, content)...)
		case "aliased_import":
			// `from X import name as alias` without a surrounding list.
			names = append(names, p.aliasedImportName(c, content))
		}
	}
	if star {
		ext.Symbols = append(ext.Symbols, types.Symbol{
			ID:         types.SymbolID{Language: types.LangPython, File: ext.File, Line: Line(node), Name: "*"},
			Name:       "*",
			Language:   types.LangPython,
			File:       ext.File,
			Line:       Line(node),
			Kind:       types.KindImport,
			Scope:      sm.Current(),
			StarImport: true,
		})
		return
	}
	for _, n := range names {
		ext.Symbols = append(ext.Symbols, types.Symbol{
			ID:            types.SymbolID{Language: types.LangPython, File: ext.File, Line: Line(node), Name: n},
			Name:          n,
			Language:      types.LangPython,
			File:          ext.File,
			Line:          Line(node),
			Kind:          types.KindImport,
			Scope:         sm.Current(),
			ImportedNames: names,
		})
	}
}

// extractImportList reads the names out of a `from X import a, b as c` list,
// mirroring tree-sitter-python's import_list node: a flat mix of bare
// identifier children and aliased_import wrappers.
func (p PythonExtractor) extractImportList(listNode *sitter.Node, content []byte) []string {
	var names []string
	for i := uint(0); i < listNode.ChildCount(); i++ {
		c := listNode.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "dotted_name":
			names = append(names, GetNodeText(c, content))
		case "aliased_import":
			names = append(names, p.aliasedImportName(c, content))
		}
	}
	return names
}

func (p PythonExtractor) aliasedImportName(aliasNode *sitter.Node, content []byte) string {
	if alias := aliasNode.ChildByFieldName("alias"); alias != nil {
		return GetNodeText(alias, content)
	}
	if name := aliasNode.ChildByFieldName("name"); name != nil {
		return GetNodeText(name, content)
	}
	return GetNodeText(FindChildByType(aliasNode, "identifier"), content)
}

// --- reference pass -------------------------------------------------------

func (p PythonExtractor) walkRefs(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_definition":
		name := GetNodeText(node.ChildByFieldName("name"), content)
		sm.Push(types.ScopeFunction, name)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				p.walkRefs(body.Child(i), content, sm, lt, ext)
			}
		}
		sm.Pop()
		return
	case "class_definition":
		name := GetNodeText(node.ChildByFieldName("name"), content)
		sm.Push(types.ScopeFunction, name)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				p.walkRefs(body.Child(i), content, sm, lt, ext)
			}
		}
		sm.Pop()
		return
	case "call":
		p.refCall(node, content, sm, lt, ext)
	case "subscript":
		p.refSubscript(node, content, sm, ext)
	case "attribute":
		p.refAttribute(node, content, sm, lt, ext)
	case "assignment":
		p.refAssignment(node, content, sm, lt, ext)
	case "return_statement":
		p.refReturn(node, content, sm, lt, ext)
	case "expression_statement":
		p.emitIdentifierRead(node.NamedChild(0), content, sm, ext)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		p.walkRefs(node.Child(i), content, sm, lt, ext)
	}
}

func (p PythonExtractor) refCall(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
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
			t, expr := resolvePythonExpr(a, content, lt)
			argTypes = append(argTypes, t)
			argExprs = append(argExprs, expr)
			p.emitIdentifierRead(a, content, sm, ext)
		}
	}
	ext.References = append(ext.References, types.Reference{
		Name: name, Kind: types.UseCall, File: ext.File, Line: Line(node), Language: types.LangPython,
		Scope: sm.Current(), ArgTypes: argTypes, ArgExprs: argExprs, ArgCount: count,
	})
}

func (p PythonExtractor) refSubscript(node *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	val := node.ChildByFieldName("value")
	if val == nil || val.Kind() != "identifier" {
		return
	}
	subs := FindChildrenByType(node, "integer")
	ref := types.Reference{
		Name: GetNodeText(val, content), Kind: types.UseArrayAccess,
		File: ext.File, Line: Line(node), Language: types.LangPython, Scope: sm.Current(),
	}
	if len(subs) == 1 {
		if v, ok := literalIntValue(subs[0], content); ok {
			ref.IndexLiteral, ref.IndexIsLiteral = v, true
		}
	} else if sub := node.ChildByFieldName("subscript"); sub != nil && sub.Kind() == "unary_operator" {
		if v, ok := literalIntValue(sub.NamedChild(0), content); ok {
			ref.IndexLiteral, ref.IndexIsLiteral = -v, true
		}
	}
	ext.References = append(ext.References, ref)
}

func (p PythonExtractor) refAttribute(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	obj := node.ChildByFieldName("object")
	attr := node.ChildByFieldName("attribute")
	if obj == nil || attr == nil {
		return
	}
	recvType, _ := resolvePythonExpr(obj, content, lt)
	ext.References = append(ext.References, types.Reference{
		Name: GetNodeText(obj, content), Kind: types.UseMemberAccess,
		File: ext.File, Line: Line(node), Language: types.LangPython, Scope: sm.Current(),
		ReceiverType: recvType, Member: GetNodeText(attr, content),
	})
}

func (p PythonExtractor) refAssignment(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	annotation := node.ChildByFieldName("type")
	if left == nil || left.Kind() != "identifier" || right == nil {
		return
	}
	rhsType, rhsExpr := resolvePythonExpr(right, content, lt)
	p.emitIdentifierRead(right, content, sm, ext)
	ref := types.Reference{
		Name: GetNodeText(left, content), Kind: types.UseWrite,
		File: ext.File, Line: Line(node), Language: types.LangPython, Scope: sm.Current(),
		RHSType: rhsType, RHSExpr: rhsExpr,
	}
	if annotation != nil {
		ref.IsAnnotated = true
		ref.TargetDeclared = strings.TrimSpace(GetNodeText(annotation, content))
	}
	ext.References = append(ext.References, ref)
}

func (p PythonExtractor) refReturn(node *sitter.Node, content []byte, sm *ScopeManager, lt *localTypes, ext *types.Extraction) {
	expr := node.NamedChild(0)
	if expr == nil {
		return
	}
	t, rawExpr := resolvePythonExpr(expr, content, lt)
	p.emitIdentifierRead(expr, content, sm, ext)
	ext.References = append(ext.References, types.Reference{
		Name: "return", Kind: types.UseReturn,
		File: ext.File, Line: Line(node), Language: types.LangPython, Scope: sm.Current(),
		RHSType: t, RHSExpr: rawExpr, EnclosingFunction: sm.CurrentFunction(),
	})
}

// emitIdentifierRead records a bare-identifier value use (call argument,
// assignment RHS, return expression, standalone expression statement) as a
// UseRead reference, so ruleUndefined sees it even though the containing
// construct (call, assignment, return) is tracked under its own Kind.
func (p PythonExtractor) emitIdentifierRead(node *sitter.Node, content []byte, sm *ScopeManager, ext *types.Extraction) {
	if node == nil || node.Kind() != "identifier" {
		return
	}
	ext.References = append(ext.References, types.Reference{
		Name: GetNodeText(node, content), Kind: types.UseRead,
		File: ext.File, Line: Line(node), Language: types.LangPython, Scope: sm.Current(),
	})
}

// annotateReferenceCounts fills Symbol.ReferencesInFile by counting
// references to each symbol's name elsewhere in the same extraction.
func annotateReferenceCounts(ext *types.Extraction) {
	counts := map[string]int{}
	for _, r := range ext.References {
		counts[r.Name]++
	}
	for i := range ext.Symbols {
		ext.Symbols[i].ReferencesInFile = counts[ext.Symbols[i].Name]
	}
}
