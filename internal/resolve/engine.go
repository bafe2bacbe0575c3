// Package resolve turns a document subject plus the live folder catalog into
// a single placement decision. Stages run strictly in order and short-circuit
// on success; the oracle is consulted only when every local heuristic fails,
// and its answer is always validated against the catalog. Identical inputs
// always produce identical decisions.
package resolve

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"archivist/internal/catalog"
	"archivist/internal/models"
	"archivist/internal/naming"
	"archivist/internal/oracle"
	"archivist/internal/rules"
)

// FolderSuggester is the slice of the oracle the engine needs.
type FolderSuggester interface {
	Enabled() bool
	SuggestFolder(ctx context.Context, subject string, folders []string) (oracle.FolderSuggestion, error)
}

// Engine resolves target folders against a fixed rule catalog. The folder
// catalog is a parameter of every call, never cached state.
type Engine struct {
	rules  *rules.Catalog
	oracle FolderSuggester
}

// New builds an engine. suggester may be nil; the engine then skips the
// oracle stage entirely.
func New(ruleCatalog *rules.Catalog, suggester FolderSuggester) *Engine {
	return &Engine{rules: ruleCatalog, oracle: suggester}
}

// similarity scoring constants (stage 4).
const (
	containmentScore  = 0.8
	tokenOverlapScore = 0.6
	similarityAccept  = 0.6
)

// Resolve picks the target folder for a subject. New folders are synthesized
// only from classification rules or when the catalog is empty, never on the
// oracle's say-so alone.
func (e *Engine) Resolve(ctx context.Context, subject string, folders []string) models.ClassificationDecision {
	// Stage 1: exact textual match against folder leaf names.
	if f, ok := exactMatch(subject, folders); ok {
		return models.ClassificationDecision{
			SuggestedPath: f,
			CreateNew:     false,
			Reasoning:     fmt.Sprintf("exact match on existing folder: %s", f),
		}
	}

	// Stage 2: keyword-scored category match resolved to an existing folder.
	cat, catOK := e.bestCategory(subject)
	if catOK {
		if f, ok := folderForPatterns(cat.TargetPatterns, folders); ok {
			return models.ClassificationDecision{
				SuggestedPath: f,
				CreateNew:     false,
				Reasoning:     fmt.Sprintf("category %q matched existing folder: %s", cat.Name, f),
			}
		}
		// Stage 3: a category qualified but none of its patterns exist in
		// the catalog. This is the one rule-driven path allowed to
		// synthesize a folder regardless of catalog contents.
		if len(cat.TargetPatterns) > 0 {
			return models.ClassificationDecision{
				SuggestedPath: cat.TargetPatterns[0],
				CreateNew:     true,
				Reasoning:     fmt.Sprintf("category %q has no existing folder; creating %s", cat.Name, cat.TargetPatterns[0]),
			}
		}
	}

	// Stage 4: leaf-name similarity.
	if f, ok := similarMatch(subject, folders); ok {
		return models.ClassificationDecision{
			SuggestedPath: f,
			CreateNew:     false,
			Reasoning:     fmt.Sprintf("similar existing folder: %s", f),
		}
	}

	// Stage 5: oracle consultation, existing folders only.
	if e.oracle != nil && e.oracle.Enabled() && len(folders) > 0 {
		if dec, ok := e.consultOracle(ctx, subject, folders); ok {
			return dec
		}
	}

	// Stage 6: forced resolution.
	return e.forced(subject, folders)
}

// consultOracle validates the oracle's answer against the catalog. Only a
// verified existing folder is accepted here; anything else (failure,
// non-member path, create-new answer) falls through to forced resolution.
func (e *Engine) consultOracle(ctx context.Context, subject string, folders []string) (models.ClassificationDecision, bool) {
	sug, err := e.oracle.SuggestFolder(ctx, subject, folders)
	if err != nil {
		log.Warnf("oracle folder suggestion failed, falling back to forced resolution: %v", err)
		return models.ClassificationDecision{}, false
	}
	if sug.CreateNew || sug.SuggestedPath == "" {
		log.Infof("oracle wanted a new folder (%q); forcing existing-folder resolution", sug.SuggestedPath)
		return models.ClassificationDecision{}, false
	}
	if !catalog.Contains(folders, sug.SuggestedPath) {
		log.Warnf("oracle suggested a non-catalog path %q; forcing existing-folder resolution", sug.SuggestedPath)
		return models.ClassificationDecision{}, false
	}
	return models.ClassificationDecision{
		SuggestedPath: catalog.NormalizePath(sug.SuggestedPath),
		CreateNew:     false,
		Reasoning:     fmt.Sprintf("oracle suggestion validated against catalog: %s", sug.Reasoning),
	}, true
}

// forced guarantees a decision: an existing folder wherever one can be
// justified, a rule-derived new folder when policy allows, and a
// subject-derived new folder only when the catalog is entirely empty.
func (e *Engine) forced(subject string, folders []string) models.ClassificationDecision {
	subjectLower := strings.ToLower(subject)

	// (a) one more pass with the broader generic rule table.
	var matchedGeneric *rules.GenericRule
	generic := rules.GenericRules()
	for i := range generic {
		rule := generic[i]
		if !anyKeyword(subjectLower, rule.Keywords) {
			continue
		}
		if f, ok := folderForPatterns(rule.TargetPatterns, folders); ok {
			return models.ClassificationDecision{
				SuggestedPath: f,
				CreateNew:     false,
				Reasoning:     fmt.Sprintf("generic classification matched existing folder: %s", f),
			}
		}
		if matchedGeneric == nil {
			matchedGeneric = &generic[i]
		}
	}
	if matchedGeneric != nil && e.rules.Strategy.AllowNewFolders && len(matchedGeneric.TargetPatterns) > 0 {
		return models.ClassificationDecision{
			SuggestedPath: matchedGeneric.TargetPatterns[0],
			CreateNew:     true,
			Reasoning:     fmt.Sprintf("no existing folder for generic category; creating %s", matchedGeneric.TargetPatterns[0]),
		}
	}

	// (b) most generic existing folder.
	if f, ok := e.mostGenericFolder(folders); ok {
		return models.ClassificationDecision{
			SuggestedPath: f,
			CreateNew:     false,
			Reasoning:     fmt.Sprintf("forced into most generic existing folder: %s", f),
		}
	}

	// (c) empty catalog: synthesize from the subject itself.
	name := naming.Sanitize(subject)
	return models.ClassificationDecision{
		SuggestedPath: name,
		CreateNew:     true,
		Reasoning:     fmt.Sprintf("catalog is empty; creating folder from subject: %s", name),
	}
}

// exactMatch returns the first catalog folder whose leaf name appears inside
// the subject, or equals one of the subject's whitespace tokens.
func exactMatch(subject string, folders []string) (string, bool) {
	subjectLower := strings.ToLower(subject)
	tokens := strings.Fields(subjectLower)
	for _, f := range folders {
		leaf := strings.ToLower(catalog.Leaf(f))
		if leaf == "" {
			continue
		}
		if strings.Contains(subjectLower, leaf) {
			return f, true
		}
		for _, tok := range tokens {
			if tok == leaf {
				return f, true
			}
		}
	}
	return "", false
}

// bestCategory scores every category as matchedKeywords/totalKeywords and
// returns the highest scorer at or above the configured threshold, ties
// broken by lowest priority value, then declaration order.
func (e *Engine) bestCategory(subject string) (rules.Category, bool) {
	subjectLower := strings.ToLower(subject)
	threshold := e.rules.Strategy.SemanticThreshold

	var best rules.Category
	bestScore := -1.0
	found := false
	for _, c := range e.rules.Categories {
		if len(c.Keywords) == 0 {
			continue
		}
		matched := 0
		for _, kw := range c.Keywords {
			if strings.Contains(subjectLower, strings.ToLower(kw)) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		score := float64(matched) / float64(len(c.Keywords))
		if score < threshold {
			continue
		}
		if score > bestScore || (score == bestScore && c.Priority < best.Priority) {
			best = c
			bestScore = score
			found = true
		}
	}
	return best, found
}

// folderForPatterns finds the first catalog folder containing one of the
// target patterns, pattern order first.
func folderForPatterns(patterns, folders []string) (string, bool) {
	for _, p := range patterns {
		pLower := strings.ToLower(p)
		for _, f := range folders {
			if strings.Contains(strings.ToLower(f), pLower) {
				return f, true
			}
		}
	}
	return "", false
}

// similarMatch scores each folder leaf against the subject: containment
// either way plus token-set overlap. The best folder wins if it clears the
// acceptance bar.
func similarMatch(subject string, folders []string) (string, bool) {
	subjectLower := strings.ToLower(subject)
	subjectTokens := tokenSet(subjectLower)

	best := ""
	bestScore := 0.0
	for _, f := range folders {
		leaf := strings.ToLower(catalog.Leaf(f))
		if leaf == "" {
			continue
		}
		score := 0.0
		if strings.Contains(subjectLower, leaf) || strings.Contains(leaf, subjectLower) {
			score += containmentScore
		}
		if intersects(subjectTokens, tokenSet(leaf)) {
			score += tokenOverlapScore
		}
		if score > bestScore && score >= similarityAccept {
			best = f
			bestScore = score
		}
	}
	return best, best != ""
}

// mostGenericFolder picks from the configured fallback names first, then the
// first top-level folder, then the first folder of any depth.
func (e *Engine) mostGenericFolder(folders []string) (string, bool) {
	if len(folders) == 0 {
		return "", false
	}
	for _, name := range e.rules.FallbackFolders {
		nameLower := strings.ToLower(name)
		for _, f := range folders {
			if strings.Contains(strings.ToLower(f), nameLower) {
				return f, true
			}
		}
	}
	for _, f := range folders {
		if !strings.Contains(catalog.NormalizePath(f), "/") {
			return f, true
		}
	}
	return folders[0], true
}

func anyKeyword(subjectLower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(subjectLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		out[t] = struct{}{}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	for t := range a {
		if _, ok := b[t]; ok {
			return true
		}
	}
	return false
}
