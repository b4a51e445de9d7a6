// Package engine wires every other package into spec.md §6's six external
// operations. It is the only package cmd/snipe's MCP binding talks to.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/snipe-dev/snipe/internal/cache"
	"github.com/snipe-dev/snipe/internal/config"
	"github.com/snipe-dev/snipe/internal/debug"
	"github.com/snipe-dev/snipe/internal/extractor"
	"github.com/snipe-dev/snipe/internal/graph"
	"github.com/snipe-dev/snipe/internal/parser"
	"github.com/snipe-dev/snipe/internal/rules"
	"github.com/snipe-dev/snipe/internal/types"
	"github.com/snipe-dev/snipe/internal/view"
	"github.com/snipe-dev/snipe/internal/watch"
)

// BufferInput is one (content, path) pair from analyze's open_buffers.
type BufferInput struct {
	Path    string
	Content []byte
}

// Engine holds per-repo state (its symbol graph, config, last-saved
// diagnostics, optional watcher) behind a single map guarded by mu. Each
// repo's graph.Graph already does its own single-writer/many-reader
// locking internally (spec.md §5) — mu here only protects repos' lifetime
// (creating a repoState on first use), never a full analysis.
type Engine struct {
	parsers  *parser.Parsers
	registry map[types.Language]extractor.Extractor

	mu    sync.Mutex
	repos map[string]*repoState
}

type repoState struct {
	root        string
	cfg         *config.Config
	graph       *graph.Graph
	watcher     *watch.Watcher
	scanned     bool

	diagMu      sync.Mutex
	diagnostics []types.Diagnostic
}

func New() *Engine {
	return &Engine{
		parsers:  parser.New(),
		registry: extractor.Registry(),
		repos:    make(map[string]*repoState),
	}
}

func (e *Engine) repoFor(ctx context.Context, repoPath string) (*repoState, error) {
	repoPath = filepath.Clean(repoPath)

	e.mu.Lock()
	rs, ok := e.repos[repoPath]
	if !ok {
		cfg, err := config.LoadKDL(repoPath)
		if err != nil {
			debug.Warn("engine", "config load failed for %s: %v", repoPath, err)
			cfg = config.Default(repoPath)
		}
		rs = &repoState{
			root:  repoPath,
			cfg:   cfg,
			graph: graph.New(repoPath, cfg, e.parsers),
		}
		e.repos[repoPath] = rs

		if cfg.Watch.Enabled {
			w, err := watch.New(repoPath, cfg, rs.graph)
			if err != nil {
				debug.Warn("engine", "watch init failed for %s: %v", repoPath, err)
			} else {
				rs.watcher = w
			}
		}
	}
	e.mu.Unlock()

	if !rs.scanned {
		if err := rs.graph.FullScan(ctx); err != nil {
			return nil, err
		}
		if diags, err := cache.LoadDiagnostics(repoPath); err == nil {
			rs.diagMu.Lock()
			rs.diagnostics = diags
			rs.diagMu.Unlock()
		}
		rs.scanned = true
	}
	return rs, nil
}

// Analyze is spec.md §6 operation 1: re-parse content for filePath, join
// its references against repoPath's graph (overlaid with openBuffers for
// this call only), and return diagnostics. Parse/extract failures degrade
// to an empty diagnostic list rather than a transport error.
func (e *Engine) Analyze(ctx context.Context, content []byte, filePath, repoPath string, openBuffers []BufferInput) ([]types.Diagnostic, error) {
	rs, err := e.repoFor(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	buf, ok := extractor.ExtractFile(e.parsers, e.registry, filePath, content)
	if !ok {
		return nil, nil
	}

	overlays := map[string]*types.Extraction{filePath: &buf}
	for _, ob := range openBuffers {
		if ext, ok := extractor.ExtractFile(e.parsers, e.registry, ob.Path, ob.Content); ok {
			overlays[ob.Path] = &ext
		}
	}

	snap := rs.graph.Current().WithOverlay(overlays)
	return rules.Run(filePath, buf, snap), nil
}

// Refresh is operation 2: a full rescan of repoPath, replacing its graph.
func (e *Engine) Refresh(ctx context.Context, repoPath string) (int, error) {
	rs, err := e.repoFor(ctx, repoPath)
	if err != nil {
		return 0, err
	}
	if err := rs.graph.FullScan(ctx); err != nil {
		return 0, err
	}
	return len(rs.graph.Current().AllSymbols()), nil
}

// Symbols is operation 3: the full repo symbol table.
func (e *Engine) Symbols(ctx context.Context, repoPath string) ([]*types.Symbol, error) {
	rs, err := e.repoFor(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	return rs.graph.Current().AllSymbols(), nil
}

// Graph is operation 4: the node/edge visualization model.
func (e *Engine) Graph(ctx context.Context, repoPath string) (view.Graph, error) {
	rs, err := e.repoFor(ctx, repoPath)
	if err != nil {
		return view.Graph{}, err
	}
	rs.diagMu.Lock()
	diags := rs.diagnostics
	rs.diagMu.Unlock()
	return view.Build(rs.graph.Current(), diags), nil
}

// Health is operation 5.
func (e *Engine) Health() string { return "OK" }

// SaveDiagnostics is operation 6: persists the union of diagnostics for
// repoPath so the graph view can flag error nodes.
func (e *Engine) SaveDiagnostics(ctx context.Context, repoPath string, diags []types.Diagnostic) error {
	rs, err := e.repoFor(ctx, repoPath)
	if err != nil {
		return err
	}

	rs.diagMu.Lock()
	merged := types.Dedup(append(append([]types.Diagnostic{}, rs.diagnostics...), diags...))
	rs.diagnostics = merged
	rs.diagMu.Unlock()

	if err := cache.SaveDiagnostics(repoPath, merged); err != nil {
		return fmt.Errorf("save diagnostics for %s: %w", repoPath, err)
	}
	return nil
}
