// Package config loads Snipe's repo-level configuration, grounded on lci's
// internal/config: a plain Go struct with sensible defaults, optionally
// overridden by a KDL document at the repo root.
package config

type Config struct {
	Project Project
	Index   Index
	Watch   Watch

	// Include/Exclude are glob patterns (doublestar syntax) layered on top
	// of the fixed ignore list DefaultIgnoreDirs.
	Include []string
	Exclude []string
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize      int64 // bytes; files larger than this are skipped during scan
	FollowSymlinks   bool
	RespectGitignore bool
	ParallelWorkers  int // 0 = runtime.NumCPU()
}

type Watch struct {
	Enabled     bool
	DebounceMs  int
}

// Default returns Snipe's baseline configuration.
func Default(root string) *Config {
	return &Config{
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      2 * 1024 * 1024,
			FollowSymlinks:   false,
			RespectGitignore: true,
			ParallelWorkers:  0,
		},
		Watch: Watch{
			Enabled:    false,
			DebounceMs: 75,
		},
		Exclude: []string{},
	}
}

// DefaultIgnoreDirs is the fixed ignore list from spec.md §4.3: a scan never
// descends into these regardless of Config.
var DefaultIgnoreDirs = []string{
	".git",
	".snipe",
	"venv",
	".venv",
	"env",
	"__pycache__",
	"node_modules",
	"build",
	"dist",
	"cmake-build-debug",
	"cmake-build-release",
}
