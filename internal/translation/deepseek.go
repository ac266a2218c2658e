package translation

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"github.com/lehigh-university-libraries/imgtranslate/internal/retry"
)

const DefaultDeepSeekModel = "deepseek-chat"

// DeepSeekTranslator translates already extracted text through an
// OpenAI-compatible chat API. The image is never sent.
type DeepSeekTranslator struct {
	completer providers.Completer
	policy    retry.Policy
	model     string
}

func NewDeepSeekTranslator(completer providers.Completer, policy retry.Policy, model string) *DeepSeekTranslator {
	if model == "" {
		model = DefaultDeepSeekModel
	}
	return &DeepSeekTranslator{completer: completer, policy: policy, model: model}
}

func (d *DeepSeekTranslator) Name() string { return ProviderDeepSeek }

func (d *DeepSeekTranslator) Kind() Kind { return TextIn }

func (d *DeepSeekTranslator) Tiers(creds models.Credentials) []Tier {
	if creds.DeepSeek == "" {
		return nil
	}
	return []Tier{{Name: "default", Model: d.model, Credential: creds.DeepSeek}}
}

func (d *DeepSeekTranslator) Translate(ctx context.Context, in Input) (*models.TranslationResult, error) {
	req := providers.Request{
		Model:       in.Tier.Model,
		Credential:  in.Tier.Credential,
		Temperature: 1.3,
		System:      buildTextSystemPrompt(in.LanguageHint),
		Prompt:      buildTextPrompt(in.Text, in.LanguageHint, in.LanguageGuess),
		JSON:        true,
	}

	raw, err := retry.Do(ctx, d.policy.WithLabel("deepseek"), func(ctx context.Context) (string, error) {
		return d.completer.Complete(ctx, req)
	})
	if err != nil {
		return nil, providers.Classify(ProviderDeepSeek, "translate", err)
	}

	slog.Debug("DeepSeek translation response", "model", in.Tier.Model, "length", len(raw))
	return parseResponse(ProviderDeepSeek, raw, in.LanguageHint)
}
