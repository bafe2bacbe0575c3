package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	LLM struct {
		Provider string `mapstructure:"provider"` // "openai" or "gemini"
		APIKey   string `mapstructure:"api_key"`
		BaseURL  string `mapstructure:"base_url"`
		Model    string `mapstructure:"model"`
		Timeout  int    `mapstructure:"timeout"` // seconds, per oracle call
	} `mapstructure:"llm"`

	KnowledgeBase struct {
		RootPath       string `mapstructure:"root_path"`
		MaxFolderDepth int    `mapstructure:"max_folder_depth"`
	} `mapstructure:"knowledge_base"`

	FileProcessing struct {
		SupportedExtensions []string `mapstructure:"supported_extensions"`
		MaxFilenameLength   int      `mapstructure:"max_filename_length"`
		VersionFormat       string   `mapstructure:"version_format"` // "simple" or "semantic"
		DateFormat          string   `mapstructure:"date_format"`    // Go time layout
	} `mapstructure:"file_processing"`

	DateExtraction struct {
		Priority []string `mapstructure:"priority"`
	} `mapstructure:"date_extraction"`

	Defaults struct {
		InitialVersion  string `mapstructure:"initial_version"`
		FallbackSubject string `mapstructure:"fallback_subject"`
	} `mapstructure:"defaults"`

	Rules struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"rules"`

	Inbox struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"inbox"`

	Watch struct {
		DebounceDelay string `mapstructure:"debounce_delay"`
	} `mapstructure:"watch"`

	Server struct {
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`

	Output struct {
		Verbose bool   `mapstructure:"verbose"`
		LogFile string `mapstructure:"log_file"`
	} `mapstructure:"output"`
}

// OracleTimeout returns the configured per-call oracle timeout.
func (c *Config) OracleTimeout() time.Duration {
	if c.LLM.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LLM.Timeout) * time.Second
}

// DebounceDelay returns the watch-mode debounce as a duration.
func (c *Config) DebounceDelay() time.Duration {
	d, err := time.ParseDuration(c.Watch.DebounceDelay)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

func setDefaults() {
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.timeout", 30)

	viper.SetDefault("knowledge_base.root_path", "./knowledge_base")
	viper.SetDefault("knowledge_base.max_folder_depth", 3)

	viper.SetDefault("file_processing.supported_extensions", []string{".txt", ".md", ".xlsx", ".pdf"})
	viper.SetDefault("file_processing.max_filename_length", 200)
	viper.SetDefault("file_processing.version_format", "simple")
	viper.SetDefault("file_processing.date_format", "20060102")

	viper.SetDefault("date_extraction.priority", []string{"content", "creation", "modification", "current"})

	viper.SetDefault("defaults.initial_version", "v1.0")
	viper.SetDefault("defaults.fallback_subject", "untitled")

	viper.SetDefault("rules.path", "config/classification_rules.yaml")

	viper.SetDefault("inbox.path", "./inbox")

	viper.SetDefault("watch.debounce_delay", "1s")

	viper.SetDefault("server.address", ":8712")

	viper.SetDefault("output.verbose", false)
	viper.SetDefault("output.log_file", "")
}

// LoadConfig reads config.yaml from the working directory. A missing file is
// fine; defaults and environment variables still apply.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	// Dedicated env var first, OPENAI_API_KEY as a conventional fallback.
	viper.BindEnv("llm.api_key", "ARCHIVIST_LLM_API_KEY", "OPENAI_API_KEY")
	viper.BindEnv("knowledge_base.root_path", "ARCHIVIST_KNOWLEDGE_BASE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
