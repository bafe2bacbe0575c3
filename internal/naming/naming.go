// Package naming derives sanitized, length-bounded archival filenames and
// parses/increments the v<major>.<minor>[.<patch>] version markers embedded
// in them. Everything here is pure.
package naming

import (
	"regexp"
	"strings"

	"archivist/internal/models"
)

// Filesystem-illegal characters are substituted with full-width lookalikes
// so no character is ever dropped silently. Path separators become
// underscores to keep a subject from spilling into extra path segments.
var charSubstitutions = []struct{ from, to string }{
	{"<", "《"},
	{">", "》"},
	{":", "："},
	{"\"", "＂"},
	{"|", "｜"},
	{"?", "？"},
	{"*", "＊"},
	{"\\", "_"},
	{"/", "_"},
}

const fallbackName = "untitled"

var embeddedDatePattern = regexp.MustCompile(`\d{8}`)

// Sanitize replaces filesystem-illegal characters and trims whitespace. An
// empty result becomes the fixed placeholder.
func Sanitize(name string) string {
	for _, sub := range charSubstitutions {
		name = strings.ReplaceAll(name, sub.from, sub.to)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackName
	}
	return name
}

// BuildFilename combines subject, date, version and extension into the final
// archival filename:
//
//	{subject}_{date}_{version}{ext}
//	{subject}_{version}{ext}        when the subject already embeds an
//	                                8-digit date
//
// The total length is bounded by maxLen (in runes); only the subject portion
// is ever truncated.
func BuildFilename(subject, date string, version models.VersionTag, ext string, maxLen int) string {
	safe := Sanitize(subject)

	suffix := "_" + version.String() + ext
	if !embeddedDatePattern.MatchString(safe) && date != "" {
		suffix = "_" + date + "_" + version.String() + ext
	}

	name := safe + suffix
	if maxLen > 0 && len([]rune(name)) > maxLen {
		budget := maxLen - len([]rune(suffix))
		if budget < 0 {
			budget = 0
		}
		runes := []rune(safe)
		if len(runes) > budget {
			runes = runes[:budget]
		}
		name = string(runes) + suffix
	}
	return name
}

var versionPattern = regexp.MustCompile(`(?i)v(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion finds the first version marker in s.
func ParseVersion(s string) (models.VersionTag, bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return models.VersionTag{}, false
	}
	tag := models.VersionTag{
		Major: atoi(m[1]),
		Minor: atoi(m[2]),
	}
	if m[3] != "" {
		tag.Patch = atoi(m[3])
		tag.HasPatch = true
	}
	return tag, true
}

// HighestVersion scans filenames for version markers and returns the maximum
// (major, minor, patch) tuple.
func HighestVersion(names []string) (models.VersionTag, bool) {
	var best models.VersionTag
	found := false
	for _, n := range names {
		tag, ok := ParseVersion(n)
		if !ok {
			continue
		}
		if !found || tag.Compare(best) > 0 {
			best = tag
			found = true
		}
	}
	return best, found
}

// Increment steps a version tag deterministically: patch+1 under the
// "semantic" format, otherwise minor+1 with the patch dropped.
func Increment(v models.VersionTag, format string) models.VersionTag {
	if format == "semantic" {
		return models.VersionTag{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1, HasPatch: true}
	}
	return models.VersionTag{Major: v.Major, Minor: v.Minor + 1}
}

// InitialVersion parses a configured initial version string, falling back to
// v1.0 when it does not parse.
func InitialVersion(s, format string) models.VersionTag {
	if tag, ok := ParseVersion(s); ok {
		if format == "semantic" && !tag.HasPatch {
			tag.HasPatch = true
		}
		return tag
	}
	tag := models.VersionTag{Major: 1, Minor: 0}
	if format == "semantic" {
		tag.HasPatch = true
	}
	return tag
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// Stop words excluded from subject keyword extraction.
var stopWords = map[string]struct{}{
	"的": {}, "是": {}, "在": {}, "和": {}, "与": {}, "及": {},
	"或": {}, "等": {}, "了": {}, "中": {}, "对": {}, "于": {},
}

var keywordPattern = regexp.MustCompile(`[\p{Han}]+|[a-zA-Z]+`)

// ExtractKeywords pulls the CJK runs and latin words out of a subject,
// dropping stop words and single-character tokens.
func ExtractKeywords(subject string) []string {
	var out []string
	for _, w := range keywordPattern.FindAllString(subject, -1) {
		if len([]rune(w)) <= 1 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}
