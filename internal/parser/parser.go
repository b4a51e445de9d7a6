// Package parser is Snipe's parser-adapter layer (spec.md §4.1): it turns
// source text into a concrete syntax tree per language, tolerating
// incomplete input, and otherwise knows nothing about Snipe's rules.
package parser

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/snipe-dev/snipe/internal/types"
)

// Parsers holds one tree-sitter parser per language. tree_sitter.Parser is
// not safe for concurrent Parse calls on the same instance, so each call
// takes one lock shared by all languages rather than sharing a bare *Parser
// across analysis workers.
type Parsers struct {
	mu     sync.Mutex
	byLang map[types.Language]*tree_sitter.Parser
}

// New builds parsers for both supported languages. A language whose grammar
// binding fails to initialize is simply absent from byLang — Parse then
// degrades to "no tree" for that language rather than panicking, matching
// spec.md §7's "input defects degrade silently".
func New() *Parsers {
	p := &Parsers{byLang: make(map[types.Language]*tree_sitter.Parser)}

	if parser, ok := setupPython(); ok {
		p.byLang[types.LangPython] = parser
	}
	// tree-sitter-c is not in Snipe's dependency set; C's declaration,
	// call, subscript, member-access and struct grammar is a near-subset
	// of C++'s, so the C++ grammar parses C source with acceptable
	// fidelity for this engine's purposes (see DESIGN.md).
	if parser, ok := setupCpp(); ok {
		p.byLang[types.LangC] = parser
	}

	return p
}

func setupPython() (*tree_sitter.Parser, bool) {
	parser := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(lang); err != nil {
		return nil, false
	}
	return parser, true
}

func setupCpp() (*tree_sitter.Parser, bool) {
	parser := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	if err := parser.SetLanguage(lang); err != nil {
		return nil, false
	}
	return parser, true
}

// Parse parses content as the given language, returning the resulting tree.
// Per spec.md §4.1, a syntactically broken file still yields whatever
// subtrees tree-sitter's error recovery could produce — Parse never returns
// an error for malformed (as opposed to unsupported) input.
func (p *Parsers) Parse(lang types.Language, content []byte) (*tree_sitter.Tree, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	parser, ok := p.byLang[lang]
	if !ok {
		return nil, false
	}
	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, false
	}
	return tree, true
}
