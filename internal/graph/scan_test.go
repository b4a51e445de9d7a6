package graph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipe-dev/snipe/internal/config"
)

func TestDiscoverFilesRespectsExcludeGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.c"), "")
	writeFile(t, filepath.Join(root, "vendor", "third_party.c"), "")

	cfg := config.Default(root)
	cfg.Exclude = []string{"vendor/**"}

	files, err := discoverFiles(root, cfg, nil)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "keep.c"), files[0])
}

func TestDiscoverFilesRespectsIncludeGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.c"), "")
	writeFile(t, filepath.Join(root, "tests", "t.c"), "")

	cfg := config.Default(root)
	cfg.Include = []string{"src/**"}

	files, err := discoverFiles(root, cfg, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "src", "main.c"), files[0])
}

func TestDiscoverFilesSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.c"), "int x;\n// padding\n")

	cfg := config.Default(root)
	cfg.Index.MaxFileSize = 4

	files, err := discoverFiles(root, cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFilesIgnoresUnsupportedExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readme.md"), "hello")
	writeFile(t, filepath.Join(root, "main.c"), "")

	cfg := config.Default(root)
	files, err := discoverFiles(root, cfg, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "main.c"), files[0])
}

func TestDiscoverFilesAppliesGitignoreRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.c"), "")
	writeFile(t, filepath.Join(root, "generated.c"), "")

	rules := []config.GitignoreRule{{Pattern: "**/generated.c"}}

	cfg := config.Default(root)
	files, err := discoverFiles(root, cfg, rules)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "keep.c"), files[0])
}
