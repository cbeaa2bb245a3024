package indexer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/codemunch/internal/config"
	"github.com/mvp-joe/codemunch/internal/parser"
)

// DiscoveredFile is one source file selected for indexing. Path is
// repo-relative with forward slashes; AbsPath is used for reading.
type DiscoveredFile struct {
	Path     string
	AbsPath  string
	Language string
}

// priorityDirs are indexed before everything else when the file cap
// would otherwise truncate a large repo arbitrarily.
var priorityDirs = []string{"src", "lib", "pkg", "cmd", "internal", "app"}

type matcher struct {
	globs []glob.Glob
}

func newMatcher(patterns []string) (*matcher, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return &matcher{globs: globs}, nil
}

func (m *matcher) ignored(relPath string) bool {
	for _, g := range m.globs {
		// Rooted form too, so "**/vendor/**" catches a top-level
		// vendor directory.
		if g.Match(relPath) || g.Match("/"+relPath) {
			return true
		}
	}
	return false
}

// Discover walks root and returns the source files to index, honoring
// ignore patterns and the size and count limits. Priority directories
// come first, then the rest, both in walk order.
func Discover(root string, cfg config.IndexingConfig) ([]DiscoveredFile, []string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s is not a directory", root)
	}

	ignore, err := newMatcher(cfg.Ignore)
	if err != nil {
		return nil, nil, err
	}

	maxBytes := int64(cfg.MaxFileSizeKB) * 1024
	var warnings []string
	var priority, rest []DiscoveredFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if ignore.ignored(rel) || ignore.ignored(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if ignore.ignored(rel) {
			return nil
		}

		language, ok := parser.LanguageForFile(rel)
		if !ok {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", rel, err))
			return nil
		}
		if fi.Size() > maxBytes {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %d KB exceeds %d KB limit", rel, fi.Size()/1024, cfg.MaxFileSizeKB))
			return nil
		}

		file := DiscoveredFile{Path: rel, AbsPath: path, Language: language}
		if inPriorityDir(rel) {
			priority = append(priority, file)
		} else {
			rest = append(rest, file)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	files := append(priority, rest...)
	if len(files) > cfg.MaxFiles {
		warnings = append(warnings, fmt.Sprintf("repo has %d source files, indexing first %d", len(files), cfg.MaxFiles))
		files = files[:cfg.MaxFiles]
	}

	// Stable output for deterministic indexes.
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, warnings, nil
}

func inPriorityDir(relPath string) bool {
	dir, _, found := cutSlash(relPath)
	if !found {
		return false
	}
	for _, p := range priorityDirs {
		if dir == p {
			return true
		}
	}
	return false
}

func cutSlash(path string) (before, after string, found bool) {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i], path[i+1:], true
		}
	}
	return path, "", false
}
