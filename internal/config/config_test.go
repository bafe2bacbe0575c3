package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T) *Config {
	t.Helper()
	viper.Reset()
	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadClean(t)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "./knowledge_base", cfg.KnowledgeBase.RootPath)
	assert.Equal(t, []string{".txt", ".md", ".xlsx", ".pdf"}, cfg.FileProcessing.SupportedExtensions)
	assert.Equal(t, 200, cfg.FileProcessing.MaxFilenameLength)
	assert.Equal(t, "simple", cfg.FileProcessing.VersionFormat)
	assert.Equal(t, "20060102", cfg.FileProcessing.DateFormat)
	assert.Equal(t, []string{"content", "creation", "modification", "current"}, cfg.DateExtraction.Priority)
	assert.Equal(t, "v1.0", cfg.Defaults.InitialVersion)
	assert.Equal(t, "untitled", cfg.Defaults.FallbackSubject)
	assert.Equal(t, "./inbox", cfg.Inbox.Path)
	assert.Equal(t, ":8712", cfg.Server.Address)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ARCHIVIST_KNOWLEDGE_BASE", "/srv/kb")
	t.Setenv("ARCHIVIST_LLM_API_KEY", "sk-test")

	cfg := loadClean(t)

	assert.Equal(t, "/srv/kb", cfg.KnowledgeBase.RootPath)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestOracleTimeout(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.OracleTimeout())

	cfg.LLM.Timeout = 5
	assert.Equal(t, 5*time.Second, cfg.OracleTimeout())
}

func TestDebounceDelay(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.Second, cfg.DebounceDelay())

	cfg.Watch.DebounceDelay = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceDelay())

	cfg.Watch.DebounceDelay = "garbage"
	assert.Equal(t, time.Second, cfg.DebounceDelay())
}
