package graph

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/snipe-dev/snipe/internal/cache"
	"github.com/snipe-dev/snipe/internal/config"
	"github.com/snipe-dev/snipe/internal/debug"
	"github.com/snipe-dev/snipe/internal/errs"
	"github.com/snipe-dev/snipe/internal/extractor"
	"github.com/snipe-dev/snipe/internal/parser"
	"github.com/snipe-dev/snipe/internal/types"
)

// Graph is the repo-wide symbol index for one repo root. Writers
// (FullScan, RefreshFile) are serialized by mu; readers call Current and
// get back an immutable *Snapshot with no locking at all, so a long-running
// rule pass never blocks a concurrent file edit from being indexed.
type Graph struct {
	root    string
	cfg     *config.Config
	parsers *parser.Parsers
	extract map[types.Language]extractor.Extractor

	mu   sync.Mutex // serializes writers only
	snap atomic.Pointer[Snapshot]

	cacheMu    sync.Mutex // guards symCache against concurrent extractOne workers
	cacheReady bool
	symCache   cache.SymbolCache
}

// New builds an empty Graph for root. Call FullScan before reading from it.
func New(root string, cfg *config.Config, parsers *parser.Parsers) *Graph {
	g := &Graph{
		root:    root,
		cfg:     cfg,
		parsers: parsers,
		extract: extractor.Registry(),
	}
	g.snap.Store(newSnapshot())
	return g
}

// Current returns the graph's current snapshot. Safe to call concurrently
// with FullScan/RefreshFile; never blocks.
func (g *Graph) Current() *Snapshot {
	return g.snap.Load()
}

// FullScan walks the repo tree and rebuilds the entire graph from scratch.
// Per-file parse+extract work runs on a bounded worker pool sized by
// cfg.Index.ParallelWorkers (0 means runtime.NumCPU()).
func (g *Graph) FullScan(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.loadSymbolCacheOnce()

	gitignoreRules, err := config.LoadGitignore(g.root)
	if err != nil {
		debug.Warn("graph", "gitignore load failed for %s: %v", g.root, err)
	}

	files, err := discoverFiles(g.root, g.cfg, gitignoreRules)
	if err != nil {
		return errs.New(errs.TypeGraph, "full_scan", err).WithFile(g.root)
	}

	workers := g.cfg.Index.ParallelWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	snap := newSnapshot()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, path := range files {
		path := path
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return nil
			default:
			}
			ext, ok := g.extractOne(path)
			if !ok {
				return nil
			}
			mu.Lock()
			snap.Files[path] = &ext
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return errs.New(errs.TypeGraph, "full_scan", err).WithFile(g.root)
	}

	snap.buildIndexes()
	g.snap.Store(snap)
	g.pruneAndPersistSymbolCache(snap)
	debug.LogGraph("full scan of %s indexed %d files", g.root, len(snap.Files))
	return nil
}

// RefreshFile re-extracts a single file and atomically swaps it into the
// graph, without touching any other file's bucket. Per spec.md §5 this is
// Snipe's incremental-update path: it never re-walks the repo tree.
func (g *Graph) RefreshFile(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.loadSymbolCacheOnce()
	ext, ok := g.extractOne(path)

	cur := g.snap.Load()
	next := cur.clone()
	if ok {
		next.Files[path] = &ext
	} else {
		delete(next.Files, path)
		g.forgetCached(path)
	}
	next.buildIndexes()
	g.snap.Store(next)
	g.pruneAndPersistSymbolCache(next)
	debug.LogGraph("refreshed %s", path)
	return nil
}

// extractOne reads and extracts path, skipping the actual parse when the
// file's content hash matches what's already in the symbol cache — spec.md
// §6's Refresh still has to stat/hash every file, but an unchanged file
// never pays for a fresh tree-sitter parse.
func (g *Graph) extractOne(path string) (types.Extraction, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		debug.Warn("graph", "read failed for %s: %v", path, err)
		return types.Extraction{}, false
	}
	if g.cfg.Index.MaxFileSize > 0 && int64(len(content)) > g.cfg.Index.MaxFileSize {
		return types.Extraction{}, false
	}

	hash := cache.ContentHash(content)
	if ext, ok := g.cachedExtraction(path, hash); ok {
		return ext, true
	}

	ext, ok := extractor.ExtractFile(g.parsers, g.extract, path, content)
	if !ok {
		debug.Warn("graph", "extraction failed for %s", path)
		return ext, false
	}
	g.storeCached(path, hash, ext)
	return ext, true
}

// loadSymbolCacheOnce reads the on-disk symbol cache the first time a
// writer runs; callers must hold g.mu.
func (g *Graph) loadSymbolCacheOnce() {
	if g.cacheReady {
		return
	}
	g.cacheReady = true
	c, err := cache.LoadSymbolCache(g.root)
	if err != nil {
		debug.Warn("graph", "symbol cache load failed for %s: %v", g.root, err)
		c = make(cache.SymbolCache)
	}
	g.cacheMu.Lock()
	g.symCache = c
	g.cacheMu.Unlock()
}

func (g *Graph) cachedExtraction(path string, hash uint64) (types.Extraction, bool) {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	entry, ok := g.symCache[path]
	if !ok || entry.Hash != hash {
		return types.Extraction{}, false
	}
	return entry.Extraction, true
}

func (g *Graph) storeCached(path string, hash uint64, ext types.Extraction) {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	if g.symCache == nil {
		g.symCache = make(cache.SymbolCache)
	}
	g.symCache[path] = cache.SymbolCacheEntry{Hash: hash, Extraction: ext}
}

func (g *Graph) forgetCached(path string) {
	g.cacheMu.Lock()
	delete(g.symCache, path)
	g.cacheMu.Unlock()
}

// pruneAndPersistSymbolCache drops cache entries for files snap no longer
// indexes, then saves the result; best-effort like SaveSymbolCache itself.
func (g *Graph) pruneAndPersistSymbolCache(snap *Snapshot) {
	g.cacheMu.Lock()
	for path := range g.symCache {
		if _, ok := snap.Files[path]; !ok {
			delete(g.symCache, path)
		}
	}
	snapshot := make(cache.SymbolCache, len(g.symCache))
	for k, v := range g.symCache {
		snapshot[k] = v
	}
	g.cacheMu.Unlock()
	cache.SaveSymbolCache(g.root, snapshot)
}
