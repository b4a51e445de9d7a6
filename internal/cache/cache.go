// Package cache persists Snipe's rebuildable on-disk state under
// <repo>/.snipe: the diagnostics the save_diagnostics operation hands off
// to the graph view, and an optional content-hash-keyed symbol cache.
// Both files are opaque to every other consumer and safe to delete.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/snipe-dev/snipe/internal/debug"
	"github.com/snipe-dev/snipe/internal/errs"
	"github.com/snipe-dev/snipe/internal/types"
)

const dirName = ".snipe"

func dir(repoRoot string) string { return filepath.Join(repoRoot, dirName) }

func diagnosticsPath(repoRoot string) string { return filepath.Join(dir(repoRoot), "diagnostics.json") }

func symbolsPath(repoRoot string) string { return filepath.Join(dir(repoRoot), "symbols.json") }

// SaveDiagnostics persists the union of diagnostics passed in, replacing
// whatever was there. Writes go to a temp file in the same directory and
// are renamed into place, so a crash mid-write never leaves a truncated
// diagnostics.json behind.
func SaveDiagnostics(repoRoot string, diags []types.Diagnostic) error {
	if err := os.MkdirAll(dir(repoRoot), 0o755); err != nil {
		return errs.New(errs.TypeIO, "save_diagnostics", err).WithFile(repoRoot)
	}
	return writeAtomic(diagnosticsPath(repoRoot), diags)
}

// LoadDiagnostics reads the last-saved diagnostics set. A missing file
// returns an empty slice, not an error — it's rebuildable state.
func LoadDiagnostics(repoRoot string) ([]types.Diagnostic, error) {
	var out []types.Diagnostic
	ok, err := readJSON(diagnosticsPath(repoRoot), &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return out, nil
}

// SymbolCacheEntry pairs a file's content hash with its last extraction, so
// a refresh can skip re-parsing a file whose content hasn't changed.
type SymbolCacheEntry struct {
	Hash      uint64           `json:"hash"`
	Extraction types.Extraction `json:"extraction"`
}

// SymbolCache is keyed by file path.
type SymbolCache map[string]SymbolCacheEntry

// ContentHash returns the fast, non-cryptographic identity hash Snipe uses
// to decide whether a file's cached extraction is still valid.
func ContentHash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// LoadSymbolCache reads the optional cache; a missing file is not an error.
func LoadSymbolCache(repoRoot string) (SymbolCache, error) {
	cache := make(SymbolCache)
	ok, err := readJSON(symbolsPath(repoRoot), &cache)
	if err != nil {
		return nil, err
	}
	if !ok {
		return make(SymbolCache), nil
	}
	return cache, nil
}

// SaveSymbolCache persists the cache, best-effort: a write failure is
// logged, not propagated, since this cache is rebuildable and the
// in-memory graph remains authoritative for the current session.
func SaveSymbolCache(repoRoot string, cache SymbolCache) {
	if err := os.MkdirAll(dir(repoRoot), 0o755); err != nil {
		debug.Warn("cache", "mkdir failed for %s: %v", repoRoot, err)
		return
	}
	if err := writeAtomic(symbolsPath(repoRoot), cache); err != nil {
		debug.Warn("cache", "symbol cache write failed: %v", err)
	}
}

func writeAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.New(errs.TypeIO, "marshal", err).WithFile(path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.New(errs.TypeIO, "create_temp", err).WithFile(path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.New(errs.TypeIO, "write", err).WithFile(path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errs.New(errs.TypeIO, "sync", err).WithFile(path)
	}
	if err := tmp.Close(); err != nil {
		return errs.New(errs.TypeIO, "close", err).WithFile(path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errs.New(errs.TypeIO, "rename", err).WithFile(path)
	}
	return nil
}

func readJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errs.New(errs.TypeIO, "read", err).WithFile(path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errs.New(errs.TypeIO, "unmarshal", err).WithFile(path)
	}
	return true, nil
}
