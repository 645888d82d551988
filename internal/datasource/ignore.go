package datasource

import (
	"fmt"
	"path"

	"github.com/gobwas/glob"
)

// IgnoreList holds compiled patterns that prune resources from traversal and
// listings. A pattern matches either the resource's final path segment or its
// whole slash-separated relative path, so "node_modules" prunes at any depth
// while "build/*" only applies at the root.
type IgnoreList struct {
	globs    []glob.Glob
	patterns []string
}

// CompileIgnores compiles the pattern strings. An empty or nil slice yields a
// list that ignores nothing.
func CompileIgnores(patterns []string) (*IgnoreList, error) {
	l := &IgnoreList{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		l.globs = append(l.globs, g)
		l.patterns = append(l.patterns, p)
	}
	return l, nil
}

// Match reports whether the resource at relPath should be skipped. A nil list
// skips nothing.
func (l *IgnoreList) Match(relPath string) bool {
	if l == nil {
		return false
	}
	name := path.Base(relPath)
	for _, g := range l.globs {
		if g.Match(name) || g.Match(relPath) {
			return true
		}
	}
	return false
}

// Patterns returns the source pattern strings, for display.
func (l *IgnoreList) Patterns() []string {
	if l == nil {
		return nil
	}
	return l.patterns
}
