package config

import (
	"testing"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/settings"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("TRANSLATION_PROVIDER", "DeepSeek")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "deepseek" {
		t.Errorf("Expected provider deepseek, got %s", cfg.Provider)
	}
	if cfg.GeminiAPIKey != "env-gemini" {
		t.Errorf("Expected GEMINI_API_KEY from env, got %q", cfg.GeminiAPIKey)
	}
	if cfg.DeepSeekModel != "deepseek-chat" {
		t.Errorf("Expected default DeepSeek model, got %s", cfg.DeepSeekModel)
	}
	if cfg.RetryMaxRetries != 3 || cfg.RetryInitialDelay != 2*time.Second {
		t.Errorf("Expected retry defaults 3/2s, got %d/%s", cfg.RetryMaxRetries, cfg.RetryInitialDelay)
	}
	if cfg.LanguageHint != "auto" {
		t.Errorf("Expected language hint auto, got %s", cfg.LanguageHint)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("TRANSLATION_PROVIDER", "ollama")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestWithSettings(t *testing.T) {
	cfg := Config{
		GeminiAPIKey:   "env-gemini",
		DeepSeekAPIKey: "env-deepseek",
		DeepSeekModel:  "deepseek-chat",
	}

	got := cfg.WithSettings(settings.Settings{
		GeminiPremiumAPIKey: "user-premium",
		DeepSeekAPIKey:      "user-deepseek",
	})

	if got.GeminiAPIKey != "env-gemini" {
		t.Errorf("Expected env Gemini key to remain, got %q", got.GeminiAPIKey)
	}
	if got.GeminiPremiumAPIKey != "user-premium" {
		t.Errorf("Expected user premium key, got %q", got.GeminiPremiumAPIKey)
	}
	if got.DeepSeekAPIKey != "user-deepseek" {
		t.Errorf("Expected user DeepSeek key to take precedence, got %q", got.DeepSeekAPIKey)
	}
	if got.DeepSeekModel != "deepseek-chat" {
		t.Errorf("Expected default model to remain, got %q", got.DeepSeekModel)
	}
	if cfg.DeepSeekAPIKey != "env-deepseek" {
		t.Errorf("Expected original config to be unchanged")
	}

	creds := got.Credentials()
	if creds.Extraction() != "env-gemini" {
		t.Errorf("Expected extraction to use the base Gemini key, got %q", creds.Extraction())
	}
}

func TestRetryPolicy(t *testing.T) {
	p := Config{RetryMaxRetries: 5, RetryInitialDelay: time.Second}.RetryPolicy()
	if p.MaxRetries != 5 || p.InitialDelay != time.Second || p.Multiplier != 2 {
		t.Errorf("Unexpected policy %+v", p)
	}
}
