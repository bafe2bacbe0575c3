package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"archivist/internal/rules"
)

// WriteStructure regenerates the structure.md summary at the knowledge-base
// root: the current folder tree with per-folder file counts, the active
// classification strategy, and totals. The file is informational only; the
// engine never reads it back.
func (s *Scanner) WriteStructure(ruleCatalog *rules.Catalog) error {
	folders, err := s.Scan()
	if err != nil {
		return err
	}
	files, err := s.ScanFiles()
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	maxDepth := 0
	for _, f := range files {
		dir := filepath.ToSlash(filepath.Dir(f))
		if dir != "." {
			counts[dir]++
		}
	}
	for _, f := range folders {
		if d := strings.Count(f, "/") + 1; d > maxDepth {
			maxDepth = d
		}
	}

	var b strings.Builder
	b.WriteString("# Knowledge Base Structure\n\n")
	fmt.Fprintf(&b, "> Maintained automatically; used as a reference when filing new documents.\n> Last updated: %s\n\n", time.Now().Format("2006-01-02"))

	b.WriteString("## Folders\n\n")
	sorted := append([]string(nil), folders...)
	sort.Strings(sorted)
	for _, f := range sorted {
		indent := strings.Repeat("  ", strings.Count(f, "/"))
		fmt.Fprintf(&b, "%s- **%s** (%d files)\n", indent, Leaf(f), counts[f])
	}
	if len(sorted) == 0 {
		b.WriteString("_(empty)_\n")
	}

	if ruleCatalog != nil {
		b.WriteString("\n## Classification\n\n")
		fmt.Fprintf(&b, "- Semantic threshold: %.2f\n", ruleCatalog.Strategy.SemanticThreshold)
		fmt.Fprintf(&b, "- Allow new folders: %v\n", ruleCatalog.Strategy.AllowNewFolders)
		fmt.Fprintf(&b, "- Force existing folders: %v\n", ruleCatalog.Strategy.ForceExisting)
		fmt.Fprintf(&b, "- Configured categories: %d\n\n", len(ruleCatalog.Categories))

		cats := append([]rules.Category(nil), ruleCatalog.Categories...)
		sort.SliceStable(cats, func(i, j int) bool { return cats[i].Priority < cats[j].Priority })
		for i, c := range cats {
			if i >= 10 {
				fmt.Fprintf(&b, "- ... and %d more\n", len(cats)-10)
				break
			}
			kw := c.Keywords
			if len(kw) > 3 {
				kw = kw[:3]
			}
			fmt.Fprintf(&b, "%d. **%s** (priority %d), keywords: %s\n", i+1, c.Name, c.Priority, strings.Join(kw, ", "))
		}
	}

	fmt.Fprintf(&b, "\n## Stats\n\n- Folders: %d\n- Documents: %d\n- Max depth: %d\n", len(folders), len(files), maxDepth)

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("ensure knowledge base root: %w", err)
	}
	path := filepath.Join(s.root, StructureFileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", StructureFileName, err)
	}
	return nil
}
