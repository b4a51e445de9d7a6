package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreRule is one non-comment, non-empty .gitignore line, kept as a
// doublestar-compatible glob. Snipe reuses doublestar as its single glob
// matcher (already pulled in for the scan ignore list) rather than hand
// rolling a second gitignore-specific pattern compiler.
type GitignoreRule struct {
	Pattern    string
	Negate     bool
	DirOnly    bool
}

// LoadGitignore reads <root>/.gitignore and returns its rules in file order.
// A missing file is not an error — it yields zero rules.
func LoadGitignore(root string) ([]GitignoreRule, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules []GitignoreRule
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule := GitignoreRule{}
		if strings.HasPrefix(line, "!") {
			rule.Negate = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			rule.DirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		line = strings.TrimPrefix(line, "/")
		if !strings.Contains(line, "/") {
			line = "**/" + line
		}
		rule.Pattern = line
		rules = append(rules, rule)
	}
	return rules, sc.Err()
}

// Ignored reports whether relPath (forward-slash, repo-relative) is excluded
// by the rule set, applying rules in order so later negations override
// earlier matches — standard .gitignore semantics.
func Ignored(rules []GitignoreRule, relPath string) bool {
	ignored := false
	for _, r := range rules {
		ok, _ := doublestar.Match(r.Pattern, relPath)
		if !ok {
			ok, _ = doublestar.Match(r.Pattern+"/**", relPath)
		}
		if ok {
			ignored = !r.Negate
		}
	}
	return ignored
}
