// Package extractor walks a parsed tree and emits the symbols and
// references spec.md §4.2 describes. It never encodes a rule — that's
// internal/rules' job — it only describes what was declared and used.
package extractor

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/snipe-dev/snipe/internal/types"
)

// Extractor is the per-language symbol extractor interface.
type Extractor interface {
	Language() types.Language
	Extract(file string, content []byte, tree *sitter.Tree) types.Extraction
}

// GetNodeText returns the source text spanned by node, or "" for a nil node
// or an out-of-range span (can happen on a tree built from a truncated
// buffer mid-edit).
func GetNodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > uint(len(content)) || end > uint(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}

// Line returns node's 1-based source line.
func Line(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}

// FindChildByType returns the first direct child of the given kind.
func FindChildByType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// FindChildrenByType returns every direct child of the given kind, in order.
func FindChildrenByType(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// ScopeManager tracks the lexical scope stack during a tree walk, adapted
// from the same pattern lci's symbollinker extractors use.
type ScopeManager struct {
	stack []scopeFrame
}

type scopeFrame struct {
	kind types.Scope
	name string
}

func NewScopeManager() *ScopeManager {
	return &ScopeManager{stack: []scopeFrame{{kind: types.ScopeModule}}}
}

func (sm *ScopeManager) Push(kind types.Scope, name string) {
	sm.stack = append(sm.stack, scopeFrame{kind: kind, name: name})
}

func (sm *ScopeManager) Pop() {
	if len(sm.stack) > 1 {
		sm.stack = sm.stack[:len(sm.stack)-1]
	}
}

func (sm *ScopeManager) Current() types.Scope {
	return sm.stack[len(sm.stack)-1].kind
}

// CurrentFunction returns the name of the innermost function/method scope,
// or "" at module scope.
func (sm *ScopeManager) CurrentFunction() string {
	for i := len(sm.stack) - 1; i >= 0; i-- {
		if sm.stack[i].kind == types.ScopeFunction {
			return sm.stack[i].name
		}
	}
	return ""
}
