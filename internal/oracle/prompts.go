package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"archivist/internal/models"
)

// Character budgets keep prompts inside token limits.
const (
	subjectContentBudget    = 3000
	similarityContentBudget = 2000
)

var sentenceTokenizer *sentences.DefaultSentenceTokenizer

func init() {
	// Tokenizer construction only fails on bad training data; the bundled
	// english data is static, so treat failure as a programming error.
	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		panic(fmt.Sprintf("sentence tokenizer: %v", err))
	}
	sentenceTokenizer = t
}

// capContent trims text to the budget at a sentence boundary where possible,
// falling back to a rune-safe hard cut for text the tokenizer cannot segment
// (typically CJK without latin punctuation).
func capContent(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	var b strings.Builder
	for _, s := range sentenceTokenizer.Tokenize(text) {
		if b.Len()+len(s.Text) > budget {
			break
		}
		b.WriteString(s.Text)
	}
	if b.Len() > 0 {
		return b.String()
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func serializeMetadata(md map[string]string) string {
	if len(md) == 0 {
		return "(none)"
	}
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", md)
	}
	return string(data)
}

func buildSubjectPrompt(doc *models.NormalizedDocument) string {
	return fmt.Sprintf(`Analyze the following document and extract its core subject.

File name: %s
File type: %s

Metadata:
%s

Content:
%s

Respond with ONLY a JSON object, no surrounding text:

{
    "subject": "concise core subject, suitable as a file name",
    "suggested_folder": "suggested folder path, '/'-separated if nested",
    "confidence": 0.85,
    "reasoning": "why this subject and folder"
}

Folder guidance:
1. Group by topic (meeting notes, project docs, technical plans, finance, HR).
2. Never create a dedicated folder per document; reuse topical folders.
3. Keep folder names short and clear.`,
		doc.Name, doc.Extension, serializeMetadata(doc.Metadata),
		capContent(doc.Content, subjectContentBudget))
}

func buildFolderPrompt(subject string, folders []string) string {
	list := "(no existing folders)"
	if len(folders) > 0 {
		var b strings.Builder
		for _, f := range folders {
			b.WriteString("- ")
			b.WriteString(f)
			b.WriteString("\n")
		}
		list = strings.TrimRight(b.String(), "\n")
	}

	return fmt.Sprintf(`Choose the archival folder for the document subject %q.

Existing folders:
%s

STRICT REQUIREMENTS:
1. "suggested_path" MUST be exactly one entry from the list above.
2. Do NOT invent new folders; "create_new" MUST be false.
3. Pick the single best topical match.

Respond with ONLY a JSON object:

{
    "suggested_path": "one of the existing folder paths",
    "create_new": false,
    "reasoning": "why this folder fits"
}

Before answering, verify suggested_path is literally in the list.`,
		subject, list)
}

func buildSimilarityPrompt(a, b string) string {
	return fmt.Sprintf(`Compare the two documents below and judge whether they are likely
different versions of the same topic.

Document 1:
%s

Document 2:
%s

Respond with ONLY a JSON object:

{
    "is_similar": true,
    "similarity_score": 0.8,
    "reasoning": "why"
}

Score topical relatedness, not verbatim overlap; 0.7 or higher means the
documents are versions of the same topic.`,
		capContent(a, similarityContentBudget), capContent(b, similarityContentBudget))
}
