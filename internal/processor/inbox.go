package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const inboxReadme = `# Inbox

Drop documents here and run "archivist process" (or leave "archivist watch"
running). Supported formats: .txt, .md, .xlsx, .pdf.

Files are renamed and filed into the knowledge base automatically. This
README is ignored.
`

// EnsureInbox creates the inbox directory with a short README explaining its
// use. Calling it on an existing inbox is a no-op apart from restoring a
// deleted README.
func EnsureInbox(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}
	readme := filepath.Join(dir, "README.md")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		if err := os.WriteFile(readme, []byte(inboxReadme), 0o644); err != nil {
			return fmt.Errorf("write inbox readme: %w", err)
		}
	}
	return nil
}

// ListPending returns the supported documents waiting in the inbox, sorted
// by name. Hidden files, subdirectories and the inbox README are skipped.
func (p *Processor) ListPending(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.EqualFold(e.Name(), "README.md") {
			continue
		}
		if !p.Supported(filepath.Ext(e.Name())) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
