// Package catalog scans the knowledge-base directory tree. The tree itself
// is the system's only durable state: the folder list is rescanned fresh
// before every classification decision so manual edits are always visible.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// StructureFileName is the generated knowledge-base summary; it is excluded
// from file counts and version scans.
const StructureFileName = "structure.md"

// Scanner reads and mutates the knowledge-base tree under a fixed root.
type Scanner struct {
	root     string
	maxDepth int
}

func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// NewScannerWithDepth bounds Scan to maxDepth folder levels; deeper folders
// are never offered as classification targets. maxDepth <= 0 means
// unlimited.
func NewScannerWithDepth(root string, maxDepth int) *Scanner {
	return &Scanner{root: root, maxDepth: maxDepth}
}

func (s *Scanner) Root() string { return s.root }

// AbsPath resolves a "/"-joined relative folder path under the root.
func (s *Scanner) AbsPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Scan walks the tree and returns every folder as a "/"-joined relative
// path, in lexical order. A missing root yields an empty catalog.
func (s *Scanner) Scan() ([]string, error) {
	var folders []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.root {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() || path == s.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if s.maxDepth > 0 && strings.Count(rel, "/")+1 > s.maxDepth {
			return filepath.SkipDir
		}
		folders = append(folders, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan knowledge base: %w", err)
	}
	return folders, nil
}

// ScanFiles returns every regular file as a "/"-joined relative path,
// skipping dotfiles and the generated structure summary.
func (s *Scanner) ScanFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || d.Name() == StructureFileName {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan knowledge base files: %w", err)
	}
	return files, nil
}

// EnsureFolder creates a relative folder synchronously. The next Scan sees
// it immediately, which is what lets back-to-back documents share a freshly
// created folder.
func (s *Scanner) EnsureFolder(rel string) error {
	if err := os.MkdirAll(s.AbsPath(rel), 0o755); err != nil {
		return fmt.Errorf("create folder %s: %w", rel, err)
	}
	return nil
}

// NormalizePath unifies "/" and platform separators for catalog membership
// checks.
func NormalizePath(p string) string {
	return strings.TrimSpace(strings.ReplaceAll(filepath.ToSlash(p), "\\", "/"))
}

// Contains reports whether path is a member of the catalog after separator
// normalization on both sides.
func Contains(folders []string, path string) bool {
	want := NormalizePath(path)
	for _, f := range folders {
		if NormalizePath(f) == want {
			return true
		}
	}
	return false
}

// Leaf returns the last segment of a "/"-joined folder path.
func Leaf(folder string) string {
	folder = NormalizePath(folder)
	if i := strings.LastIndex(folder, "/"); i >= 0 {
		return folder[i+1:]
	}
	return folder
}
