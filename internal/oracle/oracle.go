// Package oracle talks to an external semantic-suggestion service (an LLM)
// for the three questions local heuristics cannot answer: what a document is
// about, which existing folder fits a subject, and whether two documents are
// versions of the same thing. Answers are never trusted blindly; callers
// validate them and fall back locally on any failure.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"archivist/internal/config"
	"archivist/internal/models"
)

// ErrDisabled is returned by every call when no API key is configured.
// Callers treat it like any other oracle failure and resolve locally.
var ErrDisabled = errors.New("oracle is disabled (missing API key)")

// SubjectResult is the oracle's reading of a document.
type SubjectResult struct {
	Subject         string
	SuggestedFolder string
	Confidence      float64
	Reasoning       string
}

// FolderSuggestion is the oracle's placement answer for a subject.
type FolderSuggestion struct {
	SuggestedPath string
	CreateNew     bool
	Reasoning     string
}

// SimilarityResult is the oracle's judgment on whether two documents cover
// the same topic.
type SimilarityResult struct {
	IsSimilar bool
	Score     float64
	Reasoning string
}

// Oracle is the consumer-facing contract. Implementations must be safe for
// sequential reuse; the pipeline never calls them concurrently.
type Oracle interface {
	Enabled() bool
	ExtractSubject(ctx context.Context, doc *models.NormalizedDocument) (SubjectResult, error)
	SuggestFolder(ctx context.Context, subject string, folders []string) (FolderSuggestion, error)
	CheckSimilarity(ctx context.Context, a, b string) (SimilarityResult, error)
}

// completer is the narrow provider surface: one prompt in, raw text out.
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Client wraps a provider with the call timeout and response parsing.
type Client struct {
	provider completer
	timeout  time.Duration
}

// NewFromConfig builds the configured provider. A missing API key yields a
// disabled client rather than an error, matching how the rest of the
// pipeline degrades to local heuristics.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	if cfg.LLM.APIKey == "" {
		log.Warn("no LLM API key configured; oracle disabled, using local heuristics only")
		return &Client{timeout: cfg.OracleTimeout()}, nil
	}

	var (
		p   completer
		err error
	)
	switch strings.ToLower(cfg.LLM.Provider) {
	case "", "openai":
		p = newOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	case "gemini":
		p, err = newGeminiProvider(cfg.LLM.APIKey, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("oracle enabled: provider=%s model=%s", p.Name(), cfg.LLM.Model)
	return &Client{provider: p, timeout: cfg.OracleTimeout()}, nil
}

func (c *Client) Enabled() bool { return c.provider != nil }

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.provider == nil {
		return "", ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.provider.Complete(ctx, prompt)
}

// ExtractSubject asks the oracle for the document's core subject. The
// response passes through the layered parser; a clean subject is always
// returned on success.
func (c *Client) ExtractSubject(ctx context.Context, doc *models.NormalizedDocument) (SubjectResult, error) {
	raw, err := c.complete(ctx, buildSubjectPrompt(doc))
	if err != nil {
		return SubjectResult{}, err
	}
	return ParseSubjectResponse(raw), nil
}

// SuggestFolder asks the oracle to pick an existing folder for the subject.
// The returned path is NOT validated here; the resolution engine checks it
// against the catalog.
func (c *Client) SuggestFolder(ctx context.Context, subject string, folders []string) (FolderSuggestion, error) {
	raw, err := c.complete(ctx, buildFolderPrompt(subject, folders))
	if err != nil {
		return FolderSuggestion{}, err
	}
	return ParseFolderResponse(raw), nil
}

// CheckSimilarity asks whether two document bodies are versions of the same
// topic.
func (c *Client) CheckSimilarity(ctx context.Context, a, b string) (SimilarityResult, error) {
	raw, err := c.complete(ctx, buildSimilarityPrompt(a, b))
	if err != nil {
		return SimilarityResult{}, err
	}
	return ParseSimilarityResponse(raw), nil
}

var _ Oracle = (*Client)(nil)
