package graph

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/snipe-dev/snipe/internal/config"
	"github.com/snipe-dev/snipe/internal/types"
)

// discoverFiles walks root and returns every file Snipe should analyze,
// repo-root-relative path kept alongside the absolute path for glob
// matching. The fixed ignore list (config.DefaultIgnoreDirs) is never
// overridable; cfg.Include/Exclude and the optional .gitignore rules layer
// on top of it.
func discoverFiles(root string, cfg *config.Config, gitignoreRules []config.GitignoreRule) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal to the scan
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && slices.Contains(config.DefaultIgnoreDirs, d.Name()) {
				return filepath.SkipDir
			}
			if rel != "." && cfg.Index.RespectGitignore && config.Ignored(gitignoreRules, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			if d.Type()&fs.ModeSymlink != 0 && !cfg.Index.FollowSymlinks {
				return nil
			}
		}

		ext := filepath.Ext(path)
		if _, ok := types.LanguageForPath(ext); !ok {
			return nil
		}

		if cfg.Index.RespectGitignore && config.Ignored(gitignoreRules, rel) {
			return nil
		}
		if len(cfg.Exclude) > 0 && matchesAny(cfg.Exclude, rel) {
			return nil
		}
		if len(cfg.Include) > 0 && !matchesAny(cfg.Include, rel) {
			return nil
		}

		info, statErr := d.Info()
		if statErr == nil && cfg.Index.MaxFileSize > 0 && info.Size() > cfg.Index.MaxFileSize {
			return nil
		}

		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		p = strings.TrimPrefix(p, "/")
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
