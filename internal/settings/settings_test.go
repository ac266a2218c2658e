package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if s != (Settings{}) {
		t.Errorf("Expected empty settings, got %+v", s)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	want := Settings{
		GeminiAPIKey:   "gemini-key",
		DeepSeekAPIKey: "sk-deepseek",
		DeepSeekModel:  "deepseek-reasoner",
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	// empty values are written too
	if !strings.Contains(string(data), "gemini_premium_api_key") {
		t.Errorf("Expected all keys to be written, got:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestSet(t *testing.T) {
	var s Settings
	if err := s.Set("deepseek_model", " deepseek-chat "); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if s.DeepSeekModel != "deepseek-chat" {
		t.Errorf("Expected trimmed model, got %q", s.DeepSeekModel)
	}
	if err := s.Set("openai_api_key", "x"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "abc", want: "***"},
		{input: "AIzaSyExample1234", want: "********1234"},
	}

	for _, tt := range tests {
		if got := Mask(tt.input); got != tt.want {
			t.Errorf("Mask(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}
