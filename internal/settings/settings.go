// Package settings persists the user supplied API keys and model choice.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings are the four user editable values. They are always written
// back in full.
type Settings struct {
	GeminiAPIKey        string `yaml:"gemini_api_key" json:"gemini_api_key"`
	GeminiPremiumAPIKey string `yaml:"gemini_premium_api_key" json:"gemini_premium_api_key"`
	DeepSeekAPIKey      string `yaml:"deepseek_api_key" json:"deepseek_api_key"`
	DeepSeekModel       string `yaml:"deepseek_model" json:"deepseek_model"`
}

// Keys accepted by Set, in display order
var Keys = []string{"gemini_api_key", "gemini_premium_api_key", "deepseek_api_key", "deepseek_model"}

// DefaultPath returns $XDG_CONFIG_HOME/imgtranslate/settings.yaml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "imgtranslate", "settings.yaml"), nil
}

// Load reads settings from path. A missing file yields empty settings.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return s, nil
}

// Save writes all settings to path, readable only by the current user
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Set updates one value by its YAML key
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "gemini_api_key":
		s.GeminiAPIKey = value
	case "gemini_premium_api_key":
		s.GeminiPremiumAPIKey = value
	case "deepseek_api_key":
		s.DeepSeekAPIKey = value
	case "deepseek_model":
		s.DeepSeekModel = value
	default:
		return fmt.Errorf("unknown setting %q, expected one of: %s", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Masked returns a copy safe for display
func (s Settings) Masked() Settings {
	return Settings{
		GeminiAPIKey:        Mask(s.GeminiAPIKey),
		GeminiPremiumAPIKey: Mask(s.GeminiPremiumAPIKey),
		DeepSeekAPIKey:      Mask(s.DeepSeekAPIKey),
		DeepSeekModel:       s.DeepSeekModel,
	}
}

// Mask hides all but the last four characters of a key
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
