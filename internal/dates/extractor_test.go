package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"archivist/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestExtractor(priority ...string) *Extractor {
	if len(priority) == 0 {
		priority = []string{"content", "creation", "modification", "current"}
	}
	e := New("20060102", priority)
	e.now = fixedNow
	return e
}

func docWithContent(content string) *models.NormalizedDocument {
	return &models.NormalizedDocument{Content: content}
}

func TestExtractISODateWithKeywordLine(t *testing.T) {
	e := newTestExtractor()
	res := e.Extract(docWithContent("部署方案\n日期: 2024-03-15\n正文"))

	assert.Equal(t, "20240315", res.Date)
	assert.Equal(t, models.DateSourceContent, res.Source)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	assert.Equal(t, "2024-03-15", res.RawMatch)
}

func TestExtractISODateWithoutKeyword(t *testing.T) {
	e := newTestExtractor()
	res := e.Extract(docWithContent("draft written 2024-03-15 in the evening"))

	assert.Equal(t, "20240315", res.Date)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
}

func TestExtractChineseDate(t *testing.T) {
	e := newTestExtractor()
	res := e.Extract(docWithContent("会议时间：2024年3月5日"))

	assert.Equal(t, "20240305", res.Date)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
}

func TestExtractCompactDate(t *testing.T) {
	e := newTestExtractor()
	res := e.Extract(docWithContent("archive 20240315 snapshot"))

	assert.Equal(t, "20240315", res.Date)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
}

func TestExtractUSAndEUDates(t *testing.T) {
	e := newTestExtractor()

	res := e.Extract(docWithContent("meeting on 03/15/2024"))
	assert.Equal(t, "20240315", res.Date)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)

	res = e.Extract(docWithContent("geliefert am 15.03.2024"))
	assert.Equal(t, "20240315", res.Date)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)
}

func TestExtractPrefersKeywordAdjacentDate(t *testing.T) {
	e := newTestExtractor()
	content := "mentioned 2023-01-01 in passing\ndate: 03/15/2024\n"
	res := e.Extract(docWithContent(content))

	// 0.7 + 0.3 keyword bonus beats the bare 0.9 match.
	assert.Equal(t, "20240315", res.Date)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
}

func TestExtractRejectsImpossibleDates(t *testing.T) {
	e := newTestExtractor()
	doc := docWithContent("计划于 2024年2月30日 发布")
	doc.ModificationTime = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

	res := e.Extract(doc)

	assert.Equal(t, models.DateSourceModification, res.Source)
	assert.Equal(t, "20240506", res.Date)
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)
}

func TestExtractHonorsPriorityOrder(t *testing.T) {
	e := newTestExtractor("modification", "content")
	doc := docWithContent("日期: 2024-03-15")
	doc.ModificationTime = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

	res := e.Extract(doc)

	assert.Equal(t, models.DateSourceModification, res.Source)
	assert.Equal(t, "20240506", res.Date)
}

func TestExtractSkipsZeroTimestamps(t *testing.T) {
	e := newTestExtractor("creation", "modification", "current")
	res := e.Extract(&models.NormalizedDocument{})

	assert.Equal(t, models.DateSourceCurrent, res.Source)
	assert.Equal(t, "20250601", res.Date)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestExtractLastResortFallback(t *testing.T) {
	e := newTestExtractor("content")
	res := e.Extract(docWithContent("no dates in here"))

	assert.Equal(t, models.DateSourceFallback, res.Source)
	assert.Equal(t, "20250601", res.Date)
	assert.InDelta(t, 0.1, res.Confidence, 1e-9)
}

func TestExtractIgnoresUnknownPriorityEntries(t *testing.T) {
	e := newTestExtractor("bogus", "content")
	res := e.Extract(docWithContent("日期: 2024-03-15"))

	assert.Equal(t, models.DateSourceContent, res.Source)
	assert.Equal(t, "20240315", res.Date)
}

func TestValidateAndFormat(t *testing.T) {
	e := newTestExtractor()
	assert.True(t, e.Validate("20240315"))
	assert.False(t, e.Validate("2024-03-15"))
	assert.False(t, e.Validate("20241315"))
	assert.Equal(t, "20250601", e.Format(fixedNow()))
}
