// Package graph holds the repo-wide symbol graph: spec.md §4.3's
// single-writer/many-reader index built by scanning and incrementally
// refreshing a tree of C and Python files. Readers never block each other
// and never block behind a writer — they borrow an immutable *Snapshot and
// a concurrent write simply swaps the graph's snapshot pointer out from
// under them.
package graph

import (
	"sort"

	"github.com/snipe-dev/snipe/internal/types"
)

// nameKey indexes a symbol by the two fields a cross-file lookup is always
// scoped to: spec invariant I3 forbids cross-language name resolution.
type nameKey struct {
	Language types.Language
	Name     string
}

// Snapshot is an immutable point-in-time view of the repo graph. Once
// published, none of its fields are ever mutated — a refresh builds a new
// Snapshot and swaps the pointer.
type Snapshot struct {
	Files map[string]*types.Extraction

	// byName holds every symbol sharing a (language, name), ordered by
	// ascending file path. Index 0 is the canonical declaration spec.md's
	// "first declaration found (by lexicographic file path)" rule
	// describes; the rest are kept so R-UNDEFINED can suppress a report
	// when any same-named declaration exists anywhere in the repo, even a
	// duplicate.
	byName map[nameKey][]*types.Symbol

	// functions is the same index restricted to KindFunction, so
	// signature/return-type rules don't have to filter byName's full
	// slice on every lookup.
	functions map[nameKey][]*types.Symbol
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Files:     make(map[string]*types.Extraction),
		byName:    make(map[nameKey][]*types.Symbol),
		functions: make(map[nameKey][]*types.Symbol),
	}
}

// buildIndexes (re)computes byName/functions from Files. Called after any
// bulk or incremental change to Files.
func (s *Snapshot) buildIndexes() {
	s.byName = make(map[nameKey][]*types.Symbol)
	s.functions = make(map[nameKey][]*types.Symbol)

	for _, ext := range s.Files {
		for i := range ext.Symbols {
			sym := &ext.Symbols[i]
			key := nameKey{Language: sym.Language, Name: sym.Name}
			s.byName[key] = append(s.byName[key], sym)
			if sym.Kind == types.KindFunction {
				s.functions[key] = append(s.functions[key], sym)
			}
		}
	}

	for key := range s.byName {
		sorted := s.byName[key]
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })
		s.byName[key] = sorted
	}
	for key := range s.functions {
		sorted := s.functions[key]
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })
		s.functions[key] = sorted
	}
}

// clone makes a shallow copy of Files suitable for an incremental,
// single-file update: the map itself is copied so the old Snapshot's Files
// map is untouched, but *types.Extraction values are shared until replaced.
func (s *Snapshot) clone() *Snapshot {
	out := newSnapshot()
	for k, v := range s.Files {
		out.Files[k] = v
	}
	return out
}

// WithOverlay returns a new Snapshot with the given files' buckets replaced
// (or added) and its indexes rebuilt, without mutating s. spec.md §6's
// analyze operation uses this to let an unsaved buffer (and any
// open_buffers) stand in for the on-disk version of their files for one
// request, per the overlay semantics in §9's glossary — the original
// Snapshot s is never touched, so a concurrent analysis using s is
// unaffected (P4 snapshot consistency).
func (s *Snapshot) WithOverlay(overlays map[string]*types.Extraction) *Snapshot {
	next := s.clone()
	for path, ext := range overlays {
		next.Files[path] = ext
	}
	next.buildIndexes()
	return next
}

// Lookup returns every symbol sharing (lang, name) across the repo, in
// canonical-first order. The caller treats index 0 as canonical.
func (s *Snapshot) Lookup(lang types.Language, name string) []*types.Symbol {
	return s.byName[nameKey{Language: lang, Name: name}]
}

// LookupFunction is Lookup restricted to function symbols.
func (s *Snapshot) LookupFunction(lang types.Language, name string) []*types.Symbol {
	return s.functions[nameKey{Language: lang, Name: name}]
}

// Exists reports whether any symbol named name exists anywhere in the repo
// for lang, canonical or duplicate — R-UNDEFINED only fires in the absence
// of any such declaration.
func (s *Snapshot) Exists(lang types.Language, name string) bool {
	return len(s.byName[nameKey{Language: lang, Name: name}]) > 0
}

// AllSymbols returns every symbol in the snapshot, file order not
// guaranteed — used by internal/view and the symbols operation.
func (s *Snapshot) AllSymbols() []*types.Symbol {
	var out []*types.Symbol
	for _, ext := range s.Files {
		for i := range ext.Symbols {
			out = append(out, &ext.Symbols[i])
		}
	}
	return out
}
