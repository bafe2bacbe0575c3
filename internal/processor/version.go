package processor

import (
	"context"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"archivist/internal/models"
	"archivist/internal/naming"
)

// determineVersion scans the archive for earlier revisions of the same
// subject and steps past the highest version found. Candidates are matched
// by subject keywords in the filename; when the oracle is available each
// candidate is additionally confirmed by a content similarity check. Any
// failure along the way degrades to the configured initial version, never
// an error.
func (p *Processor) determineVersion(ctx context.Context, subject, content string) models.VersionTag {
	format := p.cfg.FileProcessing.VersionFormat
	initial := naming.InitialVersion(p.cfg.Defaults.InitialVersion, format)

	keywords := naming.ExtractKeywords(subject)
	if len(keywords) == 0 {
		return initial
	}

	files, err := p.kb.ScanFiles()
	if err != nil {
		log.Warnf("version scan failed, starting at %s: %v", initial, err)
		return initial
	}

	var related []string
	for _, f := range files {
		base := filepath.Base(f)
		if !keywordsMatch(base, keywords) {
			continue
		}
		if p.oracle != nil && p.oracle.Enabled() && content != "" {
			if !p.confirmSimilar(ctx, content, f) {
				continue
			}
		}
		related = append(related, base)
	}
	if len(related) == 0 {
		return initial
	}

	best, ok := naming.HighestVersion(related)
	if !ok {
		return initial
	}
	next := naming.Increment(best, format)
	log.Infof("found %d related file(s), versioning %s -> %s", len(related), best, next)
	return next
}

// confirmSimilar reads the candidate and asks the oracle whether the two
// documents are revisions of the same material. Unreadable candidates and
// oracle errors count as not similar.
func (p *Processor) confirmSimilar(ctx context.Context, content, candidate string) bool {
	doc, err := p.readers.Read(p.kb.AbsPath(candidate))
	if err != nil {
		log.Debugf("skipping version candidate %s: %v", candidate, err)
		return false
	}
	res, err := p.oracle.CheckSimilarity(ctx, content, doc.Content)
	if err != nil {
		log.Debugf("similarity check failed for %s: %v", candidate, err)
		return false
	}
	return res.IsSimilar
}

// keywordsMatch reports whether any subject keyword occurs in the filename,
// case-insensitively.
func keywordsMatch(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
