package reader

import (
	"bytes"

	"github.com/ledongthuc/pdf"

	"archivist/internal/models"
)

// PDFReader extracts plain text from PDF documents.
type PDFReader struct{}

func (p *PDFReader) Extensions() []string { return []string{".pdf"} }

func (p *PDFReader) Read(path string, doc *models.NormalizedDocument) error {
	f, r, err := pdf.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return err
	}
	doc.Content = buf.String()
	return nil
}
