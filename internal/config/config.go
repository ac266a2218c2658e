// Package config holds process-level defaults read from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/retry"
	"github.com/lehigh-university-libraries/imgtranslate/internal/settings"
)

// Config is the immutable configuration handed to the orchestrator.
// Replace it wholesale rather than mutating a shared copy.
type Config struct {
	Provider     string `envconfig:"TRANSLATION_PROVIDER" default:"gemini"`
	LanguageHint string `envconfig:"LANGUAGE_HINT" default:"auto"`

	GeminiAPIKey            string `envconfig:"GEMINI_API_KEY"`
	GeminiPremiumAPIKey     string `envconfig:"GEMINI_PREMIUM_API_KEY"`
	GeminiExtractionModel   string `envconfig:"GEMINI_EXTRACTION_MODEL" default:"gemini-2.5-flash"`
	GeminiPremiumModel      string `envconfig:"GEMINI_PREMIUM_MODEL" default:"gemini-2.5-pro"`
	GeminiStandardModel     string `envconfig:"GEMINI_STANDARD_MODEL" default:"gemini-2.5-flash"`
	GeminiRequestsPerMinute int    `envconfig:"GEMINI_REQUESTS_PER_MINUTE" default:"0"`

	DeepSeekAPIKey            string `envconfig:"DEEPSEEK_API_KEY"`
	DeepSeekModel             string `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	DeepSeekBaseURL           string `envconfig:"DEEPSEEK_BASE_URL" default:"https://api.deepseek.com"`
	DeepSeekRequestsPerMinute int    `envconfig:"DEEPSEEK_REQUESTS_PER_MINUTE" default:"0"`

	RetryMaxRetries   int           `envconfig:"RETRY_MAX_RETRIES" default:"3"`
	RetryInitialDelay time.Duration `envconfig:"RETRY_INITIAL_DELAY" default:"2s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	Port      string `envconfig:"PORT" default:"8888"`
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config from environment: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, cfg.Validate()
}

// Validate rejects settings that cannot work regardless of credentials
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini", "deepseek":
	default:
		return fmt.Errorf("unsupported TRANSLATION_PROVIDER %q: expected gemini or deepseek", c.Provider)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_RETRIES must not be negative, got %d", c.RetryMaxRetries)
	}
	if c.RetryInitialDelay < 0 {
		return fmt.Errorf("RETRY_INITIAL_DELAY must not be negative, got %s", c.RetryInitialDelay)
	}
	if c.GeminiRequestsPerMinute < 0 || c.DeepSeekRequestsPerMinute < 0 {
		return fmt.Errorf("requests per minute must not be negative")
	}
	return nil
}

// WithSettings returns a copy of c where every non-empty user setting
// overrides the environment default.
func (c Config) WithSettings(s settings.Settings) Config {
	if s.GeminiAPIKey != "" {
		c.GeminiAPIKey = s.GeminiAPIKey
	}
	if s.GeminiPremiumAPIKey != "" {
		c.GeminiPremiumAPIKey = s.GeminiPremiumAPIKey
	}
	if s.DeepSeekAPIKey != "" {
		c.DeepSeekAPIKey = s.DeepSeekAPIKey
	}
	if s.DeepSeekModel != "" {
		c.DeepSeekModel = s.DeepSeekModel
	}
	return c
}

// Credentials returns the keys used for a translation attempt
func (c Config) Credentials() models.Credentials {
	return models.Credentials{
		Gemini:        c.GeminiAPIKey,
		GeminiPremium: c.GeminiPremiumAPIKey,
		DeepSeek:      c.DeepSeekAPIKey,
	}
}

// RetryPolicy returns the backoff policy for provider calls
func (c Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxRetries = c.RetryMaxRetries
	p.InitialDelay = c.RetryInitialDelay
	return p
}

// LogValue keeps API keys out of logs
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", c.Provider),
		slog.String("language_hint", c.LanguageHint),
		slog.Bool("gemini_key", c.GeminiAPIKey != ""),
		slog.Bool("gemini_premium_key", c.GeminiPremiumAPIKey != ""),
		slog.Bool("deepseek_key", c.DeepSeekAPIKey != ""),
		slog.String("deepseek_model", c.DeepSeekModel),
		slog.Int("retries", c.RetryMaxRetries),
		slog.Duration("retry_delay", c.RetryInitialDelay),
	)
}
