// Package reader turns source files into NormalizedDocuments. Format support
// is a registry keyed by extension so new formats plug in without touching
// the pipeline.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"archivist/internal/models"
)

// Reader extracts content and metadata for one or more file formats.
type Reader interface {
	Extensions() []string
	Read(path string, doc *models.NormalizedDocument) error
}

// Registry dispatches to the Reader registered for a file's extension.
type Registry struct {
	byExt map[string]Reader
}

// NewRegistry builds a registry from the given readers. Later readers win
// extension conflicts.
func NewRegistry(readers ...Reader) *Registry {
	r := &Registry{byExt: make(map[string]Reader)}
	for _, rd := range readers {
		for _, ext := range rd.Extensions() {
			r.byExt[strings.ToLower(ext)] = rd
		}
	}
	return r
}

// DefaultRegistry covers the formats archivist handles out of the box.
func DefaultRegistry() *Registry {
	return NewRegistry(&TextReader{}, &ExcelReader{}, &PDFReader{})
}

// Supported reports whether ext has a registered reader.
func (r *Registry) Supported(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Read stats the file, dispatches content extraction by extension, and
// returns the immutable normalized view.
func (r *Registry) Read(path string) (*models.NormalizedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	rd, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	doc := &models.NormalizedDocument{
		Path:      path,
		Name:      name,
		Stem:      strings.TrimSuffix(name, filepath.Ext(name)),
		Extension: ext,
		SizeBytes: info.Size(),
		// File creation time is not portably available; leaving it zero
		// makes the date resolver skip the creation source.
		ModificationTime: info.ModTime(),
		Metadata:         make(map[string]string),
	}
	if err := rd.Read(path, doc); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return doc, nil
}
