package oracle

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"archivist/internal/models"
)

func TestCapContentShortTextUntouched(t *testing.T) {
	assert.Equal(t, "short text.", capContent("short text.", 100))
}

func TestCapContentCutsAtSentenceBoundary(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one is long enough to be dropped."
	out := capContent(text, 50)

	assert.LessOrEqual(t, len(out), 50)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "."))
}

func TestCapContentHardCutIsRuneSafe(t *testing.T) {
	// No sentence punctuation at all, forcing the hard cut.
	text := strings.Repeat("中文内容没有标点", 200)
	out := capContent(text, 100)

	assert.LessOrEqual(t, len(out), 100)
	assert.True(t, utf8.ValidString(out))
	assert.NotEmpty(t, out)
}

func TestBuildSubjectPromptIncludesDocument(t *testing.T) {
	doc := &models.NormalizedDocument{
		Name:      "方案.txt",
		Extension: ".txt",
		Content:   "正文内容",
		Metadata:  map[string]string{"title": "部署方案"},
	}
	prompt := buildSubjectPrompt(doc)

	assert.Contains(t, prompt, "方案.txt")
	assert.Contains(t, prompt, "正文内容")
	assert.Contains(t, prompt, "部署方案")
	assert.Contains(t, prompt, `"subject"`)
}

func TestBuildFolderPromptListsCatalog(t *testing.T) {
	prompt := buildFolderPrompt("运维方案", []string{"技术", "财务/报告"})

	assert.Contains(t, prompt, "- 技术")
	assert.Contains(t, prompt, "- 财务/报告")
	assert.Contains(t, prompt, "运维方案")
	assert.Contains(t, prompt, "MUST be false")
}

func TestBuildFolderPromptEmptyCatalog(t *testing.T) {
	prompt := buildFolderPrompt("x", nil)
	assert.Contains(t, prompt, "(no existing folders)")
}

func TestBuildSimilarityPromptCapsBothSides(t *testing.T) {
	long := strings.Repeat("abc def ghi jkl mno pqr stu vwx yz. ", 200)
	prompt := buildSimilarityPrompt(long, long)

	assert.Less(t, len(prompt), 2*len(long))
	assert.Contains(t, prompt, `"is_similar"`)
}
