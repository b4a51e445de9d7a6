package extractor

import (
	"path/filepath"

	"github.com/snipe-dev/snipe/internal/parser"
	"github.com/snipe-dev/snipe/internal/types"
)

// Registry is the fixed language -> Extractor mapping every caller that
// needs to turn buffer content into an Extraction shares, so the repo
// graph's full scan and the engine's single-buffer analyze path can't
// drift into different extraction behavior for the same file.
func Registry() map[types.Language]Extractor {
	return map[types.Language]Extractor{
		types.LangC:      NewC(),
		types.LangPython: NewPython(),
	}
}

// ExtractFile parses content as the language path's extension selects and
// runs the matching extractor, or returns ok=false if the path's language
// isn't supported or parsing failed outright.
func ExtractFile(parsers *parser.Parsers, registry map[types.Language]Extractor, path string, content []byte) (types.Extraction, bool) {
	lang, ok := types.LanguageForPath(filepath.Ext(path))
	if !ok {
		return types.Extraction{}, false
	}

	tree, ok := parsers.Parse(lang, content)
	if !ok {
		return types.Extraction{}, false
	}
	defer tree.Close()

	ex, ok := registry[lang]
	if !ok {
		return types.Extraction{}, false
	}
	return ex.Extract(path, content, tree), true
}
