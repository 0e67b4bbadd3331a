// Package config loads the environment-driven configuration and the
// optional YAML settings file with pipeline tunables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Required environment variables, checked in this order. The names are
// part of the external interface and must not change.
var requiredVars = []string{
	"ASTRA_DB_APPLICATION_TOKEN",
	"ASTRA_DB_API_ENDPOINT",
	"ASTRA_DB_COLLECTION_NAME",
	"ASTRA_DB_NAMESPACE",
	"OPENAI_API_KEY",
}

// Config holds everything needed to run one query round.
type Config struct {
	Astra    AstraConfig
	OpenAI   OpenAIConfig
	Settings Settings
}

// AstraConfig holds the Astra DB Data API connection settings.
type AstraConfig struct {
	Token      string
	Endpoint   string
	Collection string
	Namespace  string
}

// OpenAIConfig holds the OpenAI API settings.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// Settings holds pipeline tunables. All fields have defaults; an
// optional YAML file overrides them.
type Settings struct {
	EmbeddingModel      string  `yaml:"embedding_model"`
	EmbeddingDimensions int     `yaml:"embedding_dimensions"`
	ChatModel           string  `yaml:"chat_model"`
	Temperature         float32 `yaml:"temperature"`
	TopK                int     `yaml:"top_k"`
	WrapWidth           int     `yaml:"wrap_width"`
	RequestTimeoutSec   int     `yaml:"request_timeout_sec"`
	RetryAttempts       int     `yaml:"retry_attempts"`
	RetryBaseDelayMS    int     `yaml:"retry_base_delay_ms"`
	LogLevel            string  `yaml:"log_level"`
	OpenAIBaseURL       string  `yaml:"openai_base_url"`
}

// Load reads a .env file if present, validates the required environment
// variables, and applies the optional settings file. Validation happens
// before any client is constructed, so a missing variable fails the run
// before any network call.
func Load(settingsPath string) (Config, error) {
	_ = godotenv.Load()

	for _, name := range requiredVars {
		if os.Getenv(name) == "" {
			return Config{}, fmt.Errorf("missing required environment variable: %s", name)
		}
	}

	cfg := Config{
		Astra: AstraConfig{
			Token:      os.Getenv("ASTRA_DB_APPLICATION_TOKEN"),
			Endpoint:   os.Getenv("ASTRA_DB_API_ENDPOINT"),
			Collection: os.Getenv("ASTRA_DB_COLLECTION_NAME"),
			Namespace:  os.Getenv("ASTRA_DB_NAMESPACE"),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
		},
	}

	if settingsPath != "" {
		settings, err := loadSettings(settingsPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Settings = settings
	}

	cfg.Settings.ApplyDefaults()
	cfg.OpenAI.BaseURL = cfg.Settings.OpenAIBaseURL

	if err := cfg.Settings.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

// loadSettings reads a YAML settings file with ${VAR} expansion.
func loadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s, nil
}

// ApplyDefaults fills empty fields with default values.
func (s *Settings) ApplyDefaults() {
	if s.EmbeddingModel == "" {
		s.EmbeddingModel = "text-embedding-3-large"
	}
	if s.EmbeddingDimensions <= 0 {
		s.EmbeddingDimensions = 3072
	}
	if s.ChatModel == "" {
		s.ChatModel = "gpt-3.5-turbo-0125"
	}
	if s.TopK <= 0 {
		s.TopK = 5
	}
	if s.WrapWidth <= 0 {
		s.WrapWidth = 150
	}
	if s.RequestTimeoutSec <= 0 {
		s.RequestTimeoutSec = 60
	}
	if s.RetryAttempts <= 0 {
		s.RetryAttempts = 3
	}
	if s.RetryBaseDelayMS <= 0 {
		s.RetryBaseDelayMS = 500
	}
	if s.LogLevel == "" {
		s.LogLevel = "warn"
	}
}

// Validate checks the settings for correctness.
func (s *Settings) Validate() error {
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", s.Temperature)
	}
	if s.TopK > 1000 {
		return fmt.Errorf("top_k must be at most 1000, got %d", s.TopK)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", s.LogLevel)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
