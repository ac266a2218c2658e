package translation

import (
	"context"
	"errors"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
)

// Provider names accepted as a translation selection
const (
	ProviderGemini   = "gemini"
	ProviderDeepSeek = "deepseek"
)

// Kind is what a translation provider consumes
type Kind int

const (
	// ImageIn providers receive the original image
	ImageIn Kind = iota
	// TextIn providers receive the extracted text only
	TextIn
)

func (k Kind) String() string {
	switch k {
	case ImageIn:
		return "image-in"
	case TextIn:
		return "text-in"
	default:
		return "unknown"
	}
}

// Tier is one model and credential pair a provider can be called with.
// Tiers are tried in order, advancing only on quota exhaustion.
type Tier struct {
	Name       string
	Model      string
	Credential string
}

// Input is everything a provider needs for one translation call
type Input struct {
	Image         models.Image
	Text          string
	LanguageHint  string
	LanguageGuess string
	Tier          Tier
}

// Provider translates a single image or its extracted text into segments
type Provider interface {
	Name() string
	Kind() Kind
	Tiers(creds models.Credentials) []Tier
	Translate(ctx context.Context, in Input) (*models.TranslationResult, error)
}

// parseResponse parses raw output and labels parse failures with the provider
func parseResponse(provider, raw, hint string) (*models.TranslationResult, error) {
	result, err := ParseResult(raw, hint)
	if err != nil {
		var pe *providers.Error
		if errors.As(err, &pe) && pe.Provider == "" {
			pe.Provider = provider
		}
		return nil, err
	}
	return result, nil
}
