package translation

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"github.com/lehigh-university-libraries/imgtranslate/internal/retry"
)

const (
	DefaultGeminiPremiumModel  = "gemini-2.5-pro"
	DefaultGeminiStandardModel = "gemini-2.5-flash"
)

// GeminiTranslator sends the original image to Gemini and asks for
// segmented JSON in one call.
type GeminiTranslator struct {
	completer     providers.Completer
	policy        retry.Policy
	premiumModel  string
	standardModel string
}

func NewGeminiTranslator(completer providers.Completer, policy retry.Policy, premiumModel, standardModel string) *GeminiTranslator {
	if premiumModel == "" {
		premiumModel = DefaultGeminiPremiumModel
	}
	if standardModel == "" {
		standardModel = DefaultGeminiStandardModel
	}
	return &GeminiTranslator{
		completer:     completer,
		policy:        policy,
		premiumModel:  premiumModel,
		standardModel: standardModel,
	}
}

func (g *GeminiTranslator) Name() string { return ProviderGemini }

func (g *GeminiTranslator) Kind() Kind { return ImageIn }

// Tiers returns premium then standard. Each tier prefers its own key and
// borrows the other one when its own is missing.
func (g *GeminiTranslator) Tiers(creds models.Credentials) []Tier {
	tiers := make([]Tier, 0, 2)
	if key := firstNonEmpty(creds.GeminiPremium, creds.Gemini); key != "" {
		tiers = append(tiers, Tier{Name: "premium", Model: g.premiumModel, Credential: key})
	}
	if key := firstNonEmpty(creds.Gemini, creds.GeminiPremium); key != "" {
		tiers = append(tiers, Tier{Name: "standard", Model: g.standardModel, Credential: key})
	}
	return tiers
}

func (g *GeminiTranslator) Translate(ctx context.Context, in Input) (*models.TranslationResult, error) {
	image := in.Image
	req := providers.Request{
		Model:       in.Tier.Model,
		Credential:  in.Tier.Credential,
		Temperature: 0.2,
		Prompt:      buildImagePrompt(in.LanguageHint, in.LanguageGuess),
		Image:       &image,
		JSON:        true,
	}

	raw, err := retry.Do(ctx, g.policy.WithLabel("gemini/"+in.Tier.Name), func(ctx context.Context) (string, error) {
		return g.completer.Complete(ctx, req)
	})
	if err != nil {
		return nil, providers.Classify(ProviderGemini, "translate", err)
	}

	slog.Debug("Gemini translation response", "tier", in.Tier.Name, "model", in.Tier.Model, "length", len(raw))
	return parseResponse(ProviderGemini, raw, in.LanguageHint)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
