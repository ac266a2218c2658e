package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/imgtranslate/internal/metrics"
	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
)

// Extractor transcribes the text of an image
type Extractor interface {
	ExtractText(ctx context.Context, image models.Image, credential string) (string, error)
}

// Request is one translation attempt for a single image
type Request struct {
	Image        models.Image
	LanguageHint string
	Provider     string
	Credentials  models.Credentials
}

// Strategy runs extraction, then translation with tier fallback
type Strategy struct {
	extractor Extractor
	providers map[string]Provider
	guess     func(text string) string
}

// NewStrategy wires an extractor and translation providers. guess may be
// nil; when set it supplies a local language guess for auto mode.
func NewStrategy(extractor Extractor, guess func(string) string, ps ...Provider) *Strategy {
	s := &Strategy{
		extractor: extractor,
		providers: make(map[string]Provider, len(ps)),
		guess:     guess,
	}
	for _, p := range ps {
		s.providers[p.Name()] = p
	}
	return s
}

// Validate checks the request before any network call. Missing keys are
// reported as a single KindMissingCredential error naming all of them.
func (s *Strategy) Validate(req Request) error {
	p, ok := s.providers[req.Provider]
	if !ok {
		return fmt.Errorf("unsupported translation provider %q", req.Provider)
	}

	var missing []string
	if req.Credentials.Extraction() == "" {
		missing = append(missing, "Gemini API key")
	}
	if len(p.Tiers(req.Credentials)) == 0 {
		label := providerLabel(p.Name()) + " API key"
		if len(missing) == 0 || missing[0] != label {
			missing = append(missing, label)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return &providers.Error{
		Kind:     providers.KindMissingCredential,
		Provider: req.Provider,
		Op:       "validate",
		Message:  fmt.Sprintf("missing %s; add it in settings and retry", strings.Join(missing, " and ")),
	}
}

// TranslateItem extracts the text of the image and translates it with the
// selected provider. Empty extracted text short-circuits to an empty
// result without any translation call.
func (s *Strategy) TranslateItem(ctx context.Context, req Request) (*models.TranslationResult, error) {
	p, ok := s.providers[req.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported translation provider %q", req.Provider)
	}

	text, err := s.extractor.ExtractText(ctx, req.Image, req.Credentials.Extraction())
	if err != nil {
		return nil, fmt.Errorf("translation could not proceed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		slog.Info("No text found in image, skipping translation", "provider", p.Name())
		return models.EmptyResult(), nil
	}

	in := Input{LanguageHint: NormalizeHint(req.LanguageHint)}
	if in.LanguageHint == AutoDetect && s.guess != nil {
		in.LanguageGuess = s.guess(text)
	}
	switch p.Kind() {
	case ImageIn:
		in.Image = req.Image
	case TextIn:
		in.Text = text
	}

	tiers := p.Tiers(req.Credentials)
	if len(tiers) == 0 {
		return nil, &providers.Error{Kind: providers.KindMissingCredential, Provider: p.Name(), Op: "translate"}
	}

	for i, tier := range tiers {
		in.Tier = tier
		result, err := p.Translate(ctx, in)
		if err == nil {
			slog.Info("Translated image",
				"provider", p.Name(),
				"tier", tier.Name,
				"language", result.DetectedLanguage,
				"segments", len(result.Segments))
			return result, nil
		}
		if !providers.IsQuota(err) || i == len(tiers)-1 {
			return nil, err
		}

		slog.Warn("Quota exhausted, falling back to next tier",
			"provider", p.Name(),
			"from", tier.Name,
			"to", tiers[i+1].Name,
			"err", err)
		metrics.FallbacksTotal.WithLabelValues(p.Name()).Inc()
	}

	return nil, fmt.Errorf("no tiers attempted for %s", p.Name())
}

func providerLabel(name string) string {
	switch name {
	case ProviderGemini:
		return "Gemini"
	case ProviderDeepSeek:
		return "DeepSeek"
	default:
		return name
	}
}
