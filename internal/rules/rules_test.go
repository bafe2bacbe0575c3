package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
classification_rules:
  zeta:
    keywords: ["zz", "last"]
    target_patterns: ["zeta-folder"]
    priority: 2
  alpha:
    keywords: ["aa", "first"]
    target_patterns: ["alpha-folder"]
    priority: 1
strategy:
  semantic_threshold: 0.4
  allow_new_folders: true
  force_existing: false
fallback_folders: ["misc"]
`

func TestParsePreservesDeclarationOrder(t *testing.T) {
	cat, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	require.Len(t, cat.Categories, 2)
	// "zeta" sorts after "alpha" but is declared first; declaration order
	// is what keeps resolution deterministic.
	assert.Equal(t, "zeta", cat.Categories[0].Name)
	assert.Equal(t, "alpha", cat.Categories[1].Name)
	assert.Equal(t, []string{"zz", "last"}, cat.Categories[0].Keywords)
	assert.Equal(t, 1, cat.Categories[1].Priority)
}

func TestParseReadsStrategy(t *testing.T) {
	cat, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	assert.InDelta(t, 0.4, cat.Strategy.SemanticThreshold, 1e-9)
	assert.True(t, cat.Strategy.AllowNewFolders)
	assert.False(t, cat.Strategy.ForceExisting)
	assert.Equal(t, []string{"misc"}, cat.FallbackFolders)
}

func TestParseFillsDefaults(t *testing.T) {
	minimal := `
classification_rules:
  only:
    keywords: ["x1"]
    target_patterns: ["x"]
    priority: 1
`
	cat, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.InDelta(t, 0.3, cat.Strategy.SemanticThreshold, 1e-9)
	assert.NotEmpty(t, cat.FallbackFolders)
}

func TestParseRejectsEmptyRuleSet(t *testing.T) {
	_, err := Parse([]byte("fallback_folders: [misc]"))
	assert.Error(t, err)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("classification_rules: [not: a: mapping"))
	assert.Error(t, err)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Defaults().Categories[0].Name, cat.Categories[0].Name)
	assert.Len(t, cat.Categories, len(Defaults().Categories))
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zeta", cat.Categories[0].Name)
}

func TestDefaults(t *testing.T) {
	cat := Defaults()

	assert.Len(t, cat.Categories, 8)
	assert.Equal(t, "技术开发", cat.Categories[0].Name)
	assert.Equal(t, 1, cat.Categories[0].Priority)
	assert.InDelta(t, 0.3, cat.Strategy.SemanticThreshold, 1e-9)
	assert.False(t, cat.Strategy.AllowNewFolders)
	assert.True(t, cat.Strategy.ForceExisting)
	assert.Contains(t, cat.FallbackFolders, "文档")

	for _, c := range cat.Categories {
		assert.NotEmpty(t, c.Keywords, c.Name)
		assert.NotEmpty(t, c.TargetPatterns, c.Name)
	}
}

func TestGenericRulesHaveTargets(t *testing.T) {
	for i, r := range GenericRules() {
		assert.NotEmpty(t, r.Keywords, i)
		assert.NotEmpty(t, r.TargetPatterns, i)
	}
}
