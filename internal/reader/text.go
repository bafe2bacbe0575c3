package reader

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"archivist/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextReader handles plain text and markdown.
type TextReader struct{}

func (t *TextReader) Extensions() []string { return []string{".txt", ".md"} }

func (t *TextReader) Read(path string, doc *models.NormalizedDocument) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		log.Warnf("%s contains invalid UTF-8, replacing invalid sequences", path)
		data = bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
	}
	doc.Content = string(data)

	// A leading markdown heading doubles as a title hint.
	if doc.Extension == ".md" {
		for _, line := range strings.Split(doc.Content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if title, ok := strings.CutPrefix(line, "# "); ok {
				doc.Metadata["title"] = strings.TrimSpace(title)
			}
			break
		}
	}
	return nil
}
