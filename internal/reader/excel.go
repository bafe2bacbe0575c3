package reader

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"archivist/internal/models"
)

// ExcelReader extracts cell text and document properties from .xlsx files.
type ExcelReader struct{}

func (e *ExcelReader) Extensions() []string { return []string{".xlsx"} }

func (e *ExcelReader) Read(path string, doc *models.NormalizedDocument) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			var cells []string
			for _, c := range row {
				if c = strings.TrimSpace(c); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) > 0 {
				b.WriteString(strings.Join(cells, " | "))
				b.WriteString("\n")
			}
		}
	}
	doc.Content = b.String()

	if props, err := f.GetDocProps(); err == nil && props != nil {
		if props.Title != "" {
			doc.Metadata["title"] = props.Title
		}
		if props.Creator != "" {
			doc.Metadata["author"] = props.Creator
		}
		if props.Subject != "" {
			doc.Metadata["subject"] = props.Subject
		}
		if props.Created != "" {
			doc.Metadata["created"] = props.Created
		}
	}
	return nil
}
