package oracle

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Oracle answers arrive as free text that usually, but not always, contains
// a JSON object. Each response type runs an ordered chain of parsers and
// takes the first success: strict JSON, then a fenced code block, then a
// loose single-object regex, then a last-resort line scan.

var (
	fencedBlockPattern  = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")
	looseFolderPattern  = regexp.MustCompile(`\{[^{}]*"suggested_path"[^{}]*\}`)
	looseSubjectPattern = regexp.MustCompile(`\{[^{}]*"subject"[^{}]*\}`)
	quotedStringPattern = regexp.MustCompile(`["']([^"']{3,50})["']`)
)

type folderPayload struct {
	SuggestedPath string `json:"suggested_path"`
	CreateNew     *bool  `json:"create_new"`
	Reasoning     string `json:"reasoning"`
}

type subjectPayload struct {
	Subject         string   `json:"subject"`
	SuggestedFolder string   `json:"suggested_folder"`
	Confidence      *float64 `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
}

type similarityPayload struct {
	IsSimilar       bool    `json:"is_similar"`
	SimilarityScore float64 `json:"similarity_score"`
	Reasoning       string  `json:"reasoning"`
}

// ParseFolderResponse interprets a folder-suggestion answer. It always
// produces a usable result; an unparseable response degrades to a
// create-new suggestion the engine will validate and override.
func ParseFolderResponse(raw string) FolderSuggestion {
	parsers := []func(string) (FolderSuggestion, bool){
		parseFolderStrict,
		parseFolderFenced,
		parseFolderLoose,
		parseFolderLineScan,
	}
	for _, p := range parsers {
		if out, ok := p(raw); ok {
			return out
		}
	}
	return FolderSuggestion{CreateNew: true, Reasoning: "unparseable oracle response"}
}

func folderFromPayload(p folderPayload) FolderSuggestion {
	createNew := true
	if p.CreateNew != nil {
		createNew = *p.CreateNew
	}
	return FolderSuggestion{
		SuggestedPath: strings.TrimSpace(p.SuggestedPath),
		CreateNew:     createNew,
		Reasoning:     p.Reasoning,
	}
}

func parseFolderStrict(raw string) (FolderSuggestion, bool) {
	var p folderPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &p); err != nil {
		return FolderSuggestion{}, false
	}
	return folderFromPayload(p), true
}

func parseFolderFenced(raw string) (FolderSuggestion, bool) {
	m := fencedBlockPattern.FindStringSubmatch(raw)
	if m == nil {
		return FolderSuggestion{}, false
	}
	var p folderPayload
	if err := json.Unmarshal([]byte(m[1]), &p); err != nil {
		return FolderSuggestion{}, false
	}
	return folderFromPayload(p), true
}

func parseFolderLoose(raw string) (FolderSuggestion, bool) {
	m := looseFolderPattern.FindString(raw)
	if m == "" {
		return FolderSuggestion{}, false
	}
	var p folderPayload
	if err := json.Unmarshal([]byte(m), &p); err != nil {
		return FolderSuggestion{}, false
	}
	return folderFromPayload(p), true
}

// parseFolderLineScan is the last resort: pick a path or reasoning off
// "key: value" lines. Whatever it finds is marked create-new so the engine
// never trusts it as an existing folder.
func parseFolderLineScan(raw string) (FolderSuggestion, bool) {
	var path, reasoning string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		i := strings.LastIndex(line, ":")
		if i < 0 {
			continue
		}
		lower := strings.ToLower(line)
		value := trimQuotes(line[i+1:])
		switch {
		case path == "" && (strings.Contains(lower, "path") || strings.Contains(lower, "folder") || strings.Contains(lower, "文件夹") || strings.Contains(lower, "路径")):
			path = value
		case reasoning == "" && (strings.Contains(lower, "reason") || strings.Contains(lower, "理由")):
			reasoning = value
		}
	}
	if path == "" {
		return FolderSuggestion{}, false
	}
	if reasoning == "" {
		reasoning = "recovered from non-JSON oracle response"
	}
	return FolderSuggestion{SuggestedPath: CleanName(path), CreateNew: true, Reasoning: reasoning}, true
}

// ParseSubjectResponse interprets a subject-extraction answer through the
// same layered chain.
func ParseSubjectResponse(raw string) SubjectResult {
	parsers := []func(string) (SubjectResult, bool){
		parseSubjectStrict,
		parseSubjectFenced,
		parseSubjectLoose,
		parseSubjectTextScan,
	}
	for _, p := range parsers {
		if out, ok := p(raw); ok {
			return out
		}
	}
	return SubjectResult{Confidence: 0.3, Reasoning: "unparseable oracle response"}
}

func subjectFromPayload(p subjectPayload) (SubjectResult, bool) {
	subject := CleanName(p.Subject)
	if subject == "" {
		return SubjectResult{}, false
	}
	conf := 0.5
	if p.Confidence != nil {
		conf = *p.Confidence
	}
	return SubjectResult{
		Subject:         subject,
		SuggestedFolder: strings.TrimSpace(p.SuggestedFolder),
		Confidence:      conf,
		Reasoning:       p.Reasoning,
	}, true
}

func parseSubjectStrict(raw string) (SubjectResult, bool) {
	var p subjectPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &p); err != nil {
		return SubjectResult{}, false
	}
	return subjectFromPayload(p)
}

func parseSubjectFenced(raw string) (SubjectResult, bool) {
	m := fencedBlockPattern.FindStringSubmatch(raw)
	if m == nil {
		return SubjectResult{}, false
	}
	var p subjectPayload
	if err := json.Unmarshal([]byte(m[1]), &p); err != nil {
		return SubjectResult{}, false
	}
	return subjectFromPayload(p)
}

func parseSubjectLoose(raw string) (SubjectResult, bool) {
	m := looseSubjectPattern.FindString(raw)
	if m == "" {
		return SubjectResult{}, false
	}
	var p subjectPayload
	if err := json.Unmarshal([]byte(m), &p); err != nil {
		return SubjectResult{}, false
	}
	return subjectFromPayload(p)
}

// parseSubjectTextScan recovers a subject from "key: value" lines or, absent
// those, the first plausible quoted string in the response.
func parseSubjectTextScan(raw string) (SubjectResult, bool) {
	var subject, folder string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		i := strings.LastIndex(line, ":")
		if i < 0 {
			continue
		}
		lower := strings.ToLower(line)
		value := trimQuotes(line[i+1:])
		switch {
		case subject == "" && (strings.Contains(lower, "subject") || strings.Contains(lower, "主体")):
			subject = value
		case folder == "" && (strings.Contains(lower, "folder") || strings.Contains(lower, "文件夹")):
			folder = value
		}
	}

	if subject == "" {
		for _, m := range quotedStringPattern.FindAllStringSubmatch(raw, -1) {
			candidate := m[1]
			lower := strings.ToLower(candidate)
			if strings.Contains(lower, "json") || strings.Contains(lower, "format") {
				continue
			}
			subject = candidate
			break
		}
	}

	subject = CleanName(subject)
	if subject == "" {
		return SubjectResult{}, false
	}
	return SubjectResult{
		Subject:         subject,
		SuggestedFolder: CleanName(folder),
		Confidence:      0.3,
		Reasoning:       "recovered from non-JSON oracle response",
	}, true
}

// ParseSimilarityResponse interprets a similarity answer. Anything
// unparseable counts as not similar.
func ParseSimilarityResponse(raw string) SimilarityResult {
	candidates := []string{strings.TrimSpace(raw)}
	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	for _, c := range candidates {
		var p similarityPayload
		if err := json.Unmarshal([]byte(c), &p); err == nil {
			return SimilarityResult{IsSimilar: p.IsSimilar, Score: p.SimilarityScore, Reasoning: p.Reasoning}
		}
	}
	return SimilarityResult{Reasoning: "unparseable oracle response"}
}

var invalidNameChars = []string{"<", ">", ":", "\"", "|", "?", "*", "/", "\\"}

// CleanName strips quotes and filesystem-unsafe characters from an
// oracle-provided name and bounds its length.
func CleanName(name string) string {
	name = trimQuotes(name)
	if name == "" {
		return ""
	}
	for _, c := range invalidNameChars {
		name = strings.ReplaceAll(name, c, "_")
	}
	name = strings.TrimRight(name, ".,_ ")
	if runes := []rune(name); len(runes) > 100 {
		name = strings.TrimRight(string(runes[:100]), ".,_ ")
	}
	return name
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'""''`)
}
