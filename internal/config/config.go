package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ialtaf14/Nova-AI/internal/backend"
)

// Config contains all runtime settings for the chat client and gateway.
type Config struct {
	BackendMode    string `envconfig:"NOVA_BACKEND_MODE" default:"auto"`
	BackendURL     string `envconfig:"NOVA_BACKEND_URL"`
	OllamaBaseURL  string `envconfig:"NOVA_OLLAMA_BASE_URL" default:"http://127.0.0.1:11434/v1"`
	LocalModel     string `envconfig:"NOVA_LOCAL_MODEL" default:"llama3.1"`
	CloudBaseURL   string `envconfig:"NOVA_CLOUD_BASE_URL" default:"https://openrouter.ai/api/v1"`
	CloudAPIKey    string `envconfig:"NOVA_CLOUD_API_KEY"`
	CloudModel     string `envconfig:"NOVA_CLOUD_MODEL" default:"moonshotai/kimi-k2"`
	CloudMaxTokens int    `envconfig:"NOVA_CLOUD_MAX_TOKENS" default:"4096"`
	HistoryLimit   int    `envconfig:"NOVA_HISTORY_LIMIT" default:"20"`
	SystemPrompt   string `envconfig:"NOVA_SYSTEM_PROMPT"`

	SpeechEngine       string  `envconfig:"NOVA_SPEECH_ENGINE" default:"auto"`
	SpeechRate         float64 `envconfig:"NOVA_SPEECH_RATE" default:"1.1"`
	SpeechRegion       string  `envconfig:"NOVA_SPEECH_REGION" default:"IN"`
	RecognitionCommand string  `envconfig:"NOVA_RECOGNITION_COMMAND"`

	BindAddr                 string        `envconfig:"NOVA_BIND_ADDR" default:":8080"`
	ShutdownTimeout          time.Duration `envconfig:"NOVA_SHUTDOWN_TIMEOUT" default:"15s"`
	SessionInactivityTimeout time.Duration `envconfig:"NOVA_SESSION_INACTIVITY_TIMEOUT" default:"10m"`
	AllowAnyOrigin           bool          `envconfig:"NOVA_ALLOW_ANY_ORIGIN" default:"false"`
	MetricsNamespace         string        `envconfig:"NOVA_METRICS_NAMESPACE" default:"nova"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	LogLevel  string `envconfig:"NOVA_LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"NOVA_LOG_PRETTY" default:"false"`
	LogFile   string `envconfig:"NOVA_LOG_FILE"`
}

// Load reads an optional .env file, then the environment, and validates the
// result. Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv reads the environment only.
func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize trims and case-folds the settings, then validates them. Call it
// again after overriding fields from flags.
func (c *Config) Normalize() error {
	c.normalize()
	return c.validate()
}

func (c *Config) normalize() {
	c.BackendMode = strings.ToLower(strings.TrimSpace(c.BackendMode))
	c.BackendURL = strings.TrimSpace(c.BackendURL)
	c.CloudAPIKey = strings.TrimSpace(c.CloudAPIKey)
	c.SpeechEngine = strings.ToLower(strings.TrimSpace(c.SpeechEngine))
	c.SpeechRegion = strings.ToUpper(strings.TrimSpace(c.SpeechRegion))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
}

func (c Config) validate() error {
	switch c.BackendMode {
	case "auto", "openai", "mock":
	case "http":
		if c.BackendURL == "" {
			return fmt.Errorf("NOVA_BACKEND_URL is required when NOVA_BACKEND_MODE=http")
		}
	default:
		return fmt.Errorf("NOVA_BACKEND_MODE must be one of auto, http, openai, mock; got %q", c.BackendMode)
	}
	switch c.SpeechEngine {
	case "auto", "say", "espeak", "mock", "off", "none":
	default:
		return fmt.Errorf("NOVA_SPEECH_ENGINE must be one of auto, say, espeak, mock, off; got %q", c.SpeechEngine)
	}
	if c.SpeechRate <= 0 || c.SpeechRate > 4 {
		return fmt.Errorf("NOVA_SPEECH_RATE must be in (0, 4]")
	}
	if c.CloudMaxTokens <= 0 {
		return fmt.Errorf("NOVA_CLOUD_MAX_TOKENS must be positive")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("NOVA_HISTORY_LIMIT must be positive")
	}
	if c.SessionInactivityTimeout < 5*time.Second {
		return fmt.Errorf("NOVA_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	return nil
}

// Backend returns the backend construction settings.
func (c Config) Backend() backend.Config {
	return backend.Config{
		Mode:           c.BackendMode,
		URL:            c.BackendURL,
		LocalBaseURL:   c.OllamaBaseURL,
		LocalModel:     c.LocalModel,
		CloudBaseURL:   c.CloudBaseURL,
		CloudAPIKey:    c.CloudAPIKey,
		CloudModel:     c.CloudModel,
		CloudMaxTokens: c.CloudMaxTokens,
		HistoryLimit:   c.HistoryLimit,
		SystemPrompt:   c.SystemPrompt,
	}
}
