package translation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"github.com/lehigh-university-libraries/imgtranslate/internal/retry"
	"google.golang.org/api/googleapi"
)

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) ExtractText(_ context.Context, _ models.Image, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

// stubCompleter answers per model and records every request
type stubCompleter struct {
	mu        sync.Mutex
	name      string
	responses map[string]string
	errs      map[string]error
	requests  []providers.Request
}

func (s *stubCompleter) Name() string { return s.name }

func (s *stubCompleter) Complete(_ context.Context, req providers.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if err := s.errs[req.Model]; err != nil {
		return "", err
	}
	return s.responses[req.Model], nil
}

func (s *stubCompleter) callsFor(model string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Model == model {
			n++
		}
	}
	return n
}

func instantPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

const koreanResponse = `{"detectedLanguage":"Korean","segments":[{"source":"안녕하세요, 선배님.","target":"hello, senior."}]}`

var allKeys = models.Credentials{Gemini: "base", GeminiPremium: "premium", DeepSeek: "sk"}

func TestTranslateItemEmptyExtraction(t *testing.T) {
	extractor := &stubExtractor{text: "  \n "}
	completer := &stubCompleter{name: "gemini"}
	s := NewStrategy(extractor, nil, NewGeminiTranslator(completer, instantPolicy(), "", ""))

	result, err := s.TranslateItem(context.Background(), Request{Provider: ProviderGemini, Credentials: allKeys})
	if err != nil {
		t.Fatalf("TranslateItem failed: %v", err)
	}
	if result.DetectedLanguage != "Unknown" {
		t.Errorf("Expected Unknown, got %s", result.DetectedLanguage)
	}
	if result.Segments == nil || len(result.Segments) != 0 {
		t.Errorf("Expected empty non-nil segments, got %#v", result.Segments)
	}
	if len(completer.requests) != 0 {
		t.Errorf("Expected zero translation calls, got %d", len(completer.requests))
	}
}

func TestTranslateItemKoreanEndToEnd(t *testing.T) {
	extractor := &stubExtractor{text: "안녕하세요, 선배님."}
	completer := &stubCompleter{
		name:      "gemini",
		responses: map[string]string{DefaultGeminiPremiumModel: koreanResponse},
	}
	s := NewStrategy(extractor, nil, NewGeminiTranslator(completer, instantPolicy(), "", ""))

	result, err := s.TranslateItem(context.Background(), Request{
		Image:        models.Image{Data: []byte("img"), MIMEType: "image/png"},
		LanguageHint: "Korean",
		Provider:     ProviderGemini,
		Credentials:  allKeys,
	})
	if err != nil {
		t.Fatalf("TranslateItem failed: %v", err)
	}
	if result.DetectedLanguage != "Korean" {
		t.Errorf("Expected Korean, got %s", result.DetectedLanguage)
	}
	if len(result.Segments) != 1 || result.Segments[0].Target != "Hello, senior." {
		t.Fatalf("Expected one segment 'Hello, senior.', got %#v", result.Segments)
	}

	req := completer.requests[0]
	if req.Credential != "premium" {
		t.Errorf("Expected premium credential on first tier, got %q", req.Credential)
	}
	if req.Image == nil || string(req.Image.Data) != "img" {
		t.Errorf("Expected image-in provider to receive the image")
	}
	if !strings.Contains(req.Prompt, "written in Korean") {
		t.Errorf("Expected the hint to be a strong instruction in the prompt")
	}
}

func TestTranslateItemFallback(t *testing.T) {
	quota := &googleapi.Error{Code: 429, Message: "Resource has been exhausted"}
	tests := []struct {
		name         string
		premiumErr   error
		wantErr      bool
		wantKind     providers.Kind
		wantStandard int
		wantPremium  int
	}{
		{
			name:         "quota on premium falls back once",
			premiumErr:   quota,
			wantStandard: 1,
			wantPremium:  4,
		},
		{
			name:         "non-quota error does not fall back",
			premiumErr:   &googleapi.Error{Code: 401, Message: "API key not valid"},
			wantErr:      true,
			wantKind:     providers.KindAuthFailed,
			wantStandard: 0,
			wantPremium:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &stubCompleter{
				name:      "gemini",
				responses: map[string]string{DefaultGeminiStandardModel: koreanResponse},
				errs:      map[string]error{DefaultGeminiPremiumModel: tt.premiumErr},
			}
			s := NewStrategy(&stubExtractor{text: "안녕하세요"}, nil, NewGeminiTranslator(completer, instantPolicy(), "", ""))

			_, err := s.TranslateItem(context.Background(), Request{Provider: ProviderGemini, Credentials: allKeys})
			if tt.wantErr {
				if providers.KindOf(err) != tt.wantKind {
					t.Errorf("Expected kind %s, got %v", tt.wantKind, err)
				}
			} else if err != nil {
				t.Fatalf("Expected success after fallback, got %v", err)
			}
			if got := completer.callsFor(DefaultGeminiStandardModel); got != tt.wantStandard {
				t.Errorf("Expected %d fallback calls, got %d", tt.wantStandard, got)
			}
			if got := completer.callsFor(DefaultGeminiPremiumModel); got != tt.wantPremium {
				t.Errorf("Expected %d premium calls, got %d", tt.wantPremium, got)
			}
		})
	}
}

func TestTranslateItemExtractionFailureAborts(t *testing.T) {
	cause := &providers.Error{Kind: providers.KindExtractionFailed, Provider: "gemini", Err: errors.New("boom")}
	completer := &stubCompleter{name: "deepseek"}
	s := NewStrategy(&stubExtractor{err: cause}, nil, NewDeepSeekTranslator(completer, instantPolicy(), ""))

	_, err := s.TranslateItem(context.Background(), Request{Provider: ProviderDeepSeek, Credentials: allKeys})
	if providers.KindOf(err) != providers.KindExtractionFailed {
		t.Errorf("Expected extraction failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "translation could not proceed") {
		t.Errorf("Expected message to explain translation did not run, got %q", err.Error())
	}
	if len(completer.requests) != 0 {
		t.Errorf("Expected zero translation calls, got %d", len(completer.requests))
	}
}

func TestTranslateItemTextIn(t *testing.T) {
	completer := &stubCompleter{
		name:      "deepseek",
		responses: map[string]string{"deepseek-chat": "```json\n" + koreanResponse + "\n```"},
	}
	var guessed string
	guess := func(text string) string {
		guessed = text
		return "Korean"
	}
	s := NewStrategy(&stubExtractor{text: "안녕하세요, 선배님."}, guess, NewDeepSeekTranslator(completer, instantPolicy(), ""))

	result, err := s.TranslateItem(context.Background(), Request{
		Image:        models.Image{Data: []byte("img")},
		LanguageHint: "auto",
		Provider:     ProviderDeepSeek,
		Credentials:  allKeys,
	})
	if err != nil {
		t.Fatalf("TranslateItem failed: %v", err)
	}
	if result.Segments[0].Target != "Hello, senior." {
		t.Errorf("Expected normalized target, got %q", result.Segments[0].Target)
	}
	if guessed != "안녕하세요, 선배님." {
		t.Errorf("Expected local guess on extracted text, got %q", guessed)
	}

	req := completer.requests[0]
	if req.Image != nil {
		t.Errorf("Expected text-in provider not to receive the image")
	}
	if !strings.Contains(req.Prompt, "안녕하세요, 선배님.") {
		t.Errorf("Expected extracted text in prompt")
	}
	if !strings.Contains(req.Prompt, "guessed Korean") {
		t.Errorf("Expected the local guess as a note in auto mode")
	}
	if req.Credential != "sk" || req.Model != "deepseek-chat" {
		t.Errorf("Unexpected credential/model %q/%q", req.Credential, req.Model)
	}
}

func TestValidate(t *testing.T) {
	s := NewStrategy(&stubExtractor{}, nil,
		NewGeminiTranslator(&stubCompleter{name: "gemini"}, instantPolicy(), "", ""),
		NewDeepSeekTranslator(&stubCompleter{name: "deepseek"}, instantPolicy(), ""),
	)

	tests := []struct {
		name        string
		provider    string
		creds       models.Credentials
		wantKind    providers.Kind
		wantMessage string
	}{
		{name: "gemini ok with premium only", provider: ProviderGemini, creds: models.Credentials{GeminiPremium: "p"}},
		{name: "gemini missing", provider: ProviderGemini, creds: models.Credentials{DeepSeek: "sk"}, wantKind: providers.KindMissingCredential, wantMessage: "missing Gemini API key;"},
		{name: "deepseek missing both", provider: ProviderDeepSeek, wantKind: providers.KindMissingCredential, wantMessage: "missing Gemini API key and DeepSeek API key"},
		{name: "deepseek ok", provider: ProviderDeepSeek, creds: models.Credentials{Gemini: "g", DeepSeek: "sk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(Request{Provider: tt.provider, Credentials: tt.creds})
			if tt.wantKind == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if providers.KindOf(err) != tt.wantKind {
				t.Fatalf("Expected kind %s, got %v", tt.wantKind, err)
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("Expected message containing %q, got %q", tt.wantMessage, err.Error())
			}
		})
	}

	if err := s.Validate(Request{Provider: "ollama", Credentials: allKeys}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestGeminiTiers(t *testing.T) {
	g := NewGeminiTranslator(&stubCompleter{name: "gemini"}, instantPolicy(), "", "")

	tiers := g.Tiers(models.Credentials{Gemini: "base"})
	if len(tiers) != 2 || tiers[0].Credential != "base" || tiers[1].Credential != "base" {
		t.Errorf("Expected both tiers to borrow the base key, got %+v", tiers)
	}

	tiers = g.Tiers(models.Credentials{Gemini: "base", GeminiPremium: "premium"})
	if tiers[0].Model != DefaultGeminiPremiumModel || tiers[0].Credential != "premium" {
		t.Errorf("Unexpected premium tier %+v", tiers[0])
	}
	if tiers[1].Model != DefaultGeminiStandardModel || tiers[1].Credential != "base" {
		t.Errorf("Unexpected standard tier %+v", tiers[1])
	}

	if tiers := g.Tiers(models.Credentials{}); len(tiers) != 0 {
		t.Errorf("Expected no tiers without keys, got %+v", tiers)
	}
}
