// Package discover finds Rust source files under a root directory.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/ffiscan/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path    string // Relative to root, slash-separated
	AbsPath string
	Depth   int // 0 for root itself, 1 for its direct children
}

// Options narrows discovery. The zero value matches every .rs entry.
type Options struct {
	// Exclude holds glob patterns matched against slash-separated relative
	// paths. Matching files are skipped and matching directories pruned.
	Exclude []string
	// RespectGitignore skips paths matched by <root>/.gitignore.
	RespectGitignore bool
}

// Files walks root and returns every non-directory entry with a .rs
// extension, sorted by path. A root that is a symlink is followed; links
// below it are not. Unreadable directories and broken entries are skipped
// silently; a missing root yields no files. The only error is an invalid
// exclude pattern.
func Files(root string, opts Options) ([]FileEntry, error) {
	excludes := make([]glob.Glob, 0, len(opts.Exclude))
	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, g)
	}

	walkRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		walkRoot = resolved
	}

	var gi *ignore.GitIgnore
	if opts.RespectGitignore {
		gi = loadGitignore(walkRoot)
	}

	var results []FileEntry

	_ = filepath.WalkDir(walkRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if matchesAny(rel, excludes) || (gi != nil && gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isSource(d.Name()) {
			return nil
		}

		// root may itself be a source file.
		dep := depth(rel)
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if rel == "." {
			rel = d.Name()
		}

		if matchesAny(rel, excludes) || (gi != nil && gi.MatchesPath(rel)) {
			return nil
		}

		results = append(results, FileEntry{
			Path:    rel,
			AbsPath: abs,
			Depth:   dep,
		})
		return nil
	})

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// isSource reports whether name carries a registered source extension. A
// name that is only the extension (".rs") has no extension at all.
func isSource(name string) bool {
	ext := filepath.Ext(name)
	if ext == name {
		return false
	}
	return lang.ForExtension(ext) == lang.Rust
}

func depth(rel string) int {
	if rel == "." {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

func matchesAny(rel string, patterns []glob.Glob) bool {
	for _, g := range patterns {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
