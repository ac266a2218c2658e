package translation

import (
	"github.com/lehigh-university-libraries/imgtranslate/internal/config"
	"github.com/lehigh-university-libraries/imgtranslate/internal/gemini"
	"github.com/lehigh-university-libraries/imgtranslate/internal/langdetect"
	"github.com/lehigh-university-libraries/imgtranslate/internal/ocr"
	"github.com/lehigh-university-libraries/imgtranslate/internal/openai"
)

// FromConfig builds a Strategy with live Gemini and DeepSeek clients
func FromConfig(cfg config.Config) *Strategy {
	policy := cfg.RetryPolicy()

	g := gemini.New(cfg.GeminiRequestsPerMinute)
	ds := openai.New(ProviderDeepSeek, cfg.DeepSeekBaseURL, cfg.DeepSeekRequestsPerMinute)

	return NewStrategy(
		ocr.NewService(g, policy, cfg.GeminiExtractionModel),
		langdetect.Guess,
		NewGeminiTranslator(g, policy, cfg.GeminiPremiumModel, cfg.GeminiStandardModel),
		NewDeepSeekTranslator(ds, policy, cfg.DeepSeekModel),
	)
}
