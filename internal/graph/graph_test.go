package graph

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/snipe-dev/snipe/internal/cache"
	"github.com/snipe-dev/snipe/internal/config"
	"github.com/snipe-dev/snipe/internal/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFullScanIndexesCAndPythonFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.c"), "int compute(int x) { return x; }\n")
	writeFile(t, filepath.Join(root, "b.py"), "def helper(y):\n    return y\n")

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())

	require.NoError(t, g.FullScan(context.Background()))

	snap := g.Current()
	assert.Len(t, snap.Files, 2)
}

func TestFullScanSkipsDefaultIgnoreDirs(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.c"), "int f(void) { return 0; }\n")
	writeFile(t, filepath.Join(root, "node_modules", "skip.c"), "int g(void) { return 0; }\n")

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())
	require.NoError(t, g.FullScan(context.Background()))

	snap := g.Current()
	assert.Len(t, snap.Files, 1)
	_, ok := snap.Files[filepath.Join(root, "keep.c")]
	assert.True(t, ok)
}

func TestRefreshFileReplacesOnlyThatFilesBucket(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	pathA := filepath.Join(root, "a.c")
	pathB := filepath.Join(root, "b.c")
	writeFile(t, pathA, "int one(void) { return 1; }\n")
	writeFile(t, pathB, "int two(void) { return 2; }\n")

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())
	require.NoError(t, g.FullScan(context.Background()))

	writeFile(t, pathA, "int one(void) { return 1; }\nint three(void) { return 3; }\n")
	require.NoError(t, g.RefreshFile(pathA))

	snap := g.Current()
	require.Contains(t, snap.Files, pathA)
	require.Contains(t, snap.Files, pathB)
	assert.True(t, snap.Exists("c", "three"))
}

func TestRefreshFileRemovesDeletedFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	path := filepath.Join(root, "gone.c")
	writeFile(t, path, "int f(void) { return 0; }\n")

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())
	require.NoError(t, g.FullScan(context.Background()))
	require.Contains(t, g.Current().Files, path)

	require.NoError(t, os.Remove(path))
	require.NoError(t, g.RefreshFile(path))

	assert.NotContains(t, g.Current().Files, path)
}

func TestFullScanPersistsSymbolCacheToDisk(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	pathA := filepath.Join(root, "a.c")
	writeFile(t, pathA, "int compute(int x) { return x; }\n")

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())
	require.NoError(t, g.FullScan(context.Background()))

	loaded, err := cache.LoadSymbolCache(root)
	require.NoError(t, err)
	entry, ok := loaded[pathA]
	require.True(t, ok)
	assert.Equal(t, cache.ContentHash([]byte("int compute(int x) { return x; }\n")), entry.Hash)
}

func TestFullScanReusesCachedExtractionForUnchangedFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	pathA := filepath.Join(root, "a.c")
	writeFile(t, pathA, "int compute(int x) { return x; }\n")

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())
	require.NoError(t, g.FullScan(context.Background()))
	first := g.Current().Files[pathA]

	require.NoError(t, g.FullScan(context.Background()))
	second := g.Current().Files[pathA]

	assert.Equal(t, first, second)
}

func TestFullScanPrunesSymbolCacheForDeletedFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	pathA := filepath.Join(root, "a.c")
	writeFile(t, pathA, "int one(void) { return 1; }\n")

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())
	require.NoError(t, g.FullScan(context.Background()))

	require.NoError(t, os.Remove(pathA))
	require.NoError(t, g.FullScan(context.Background()))

	loaded, err := cache.LoadSymbolCache(root)
	require.NoError(t, err)
	_, ok := loaded[pathA]
	assert.False(t, ok)
}

// TestConcurrentReadsDuringWriteNeverBlock exercises the single-writer/
// many-reader discipline (spec.md §5): readers calling Current while a
// FullScan is in flight must never observe a torn or locked state.
func TestConcurrentReadsDuringWriteNeverBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(root, "f"+string(rune('a'+i))+".c"), "int f(void) { return 0; }\n")
	}

	cfg := config.Default(root)
	g := New(root, cfg, parser.New())
	require.NoError(t, g.FullScan(context.Background()))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = g.Current()
				}
			}
		}()
	}

	require.NoError(t, g.FullScan(context.Background()))
	close(stop)
	wg.Wait()
}
