package ocr

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"github.com/lehigh-university-libraries/imgtranslate/internal/retry"
)

// DefaultModel is used for extraction when none is configured
const DefaultModel = "gemini-2.5-flash"

// Service extracts the visible text of an image with a vision model
type Service struct {
	completer providers.Completer
	policy    retry.Policy
	model     string
}

// NewService creates a new OCR service
func NewService(completer providers.Completer, policy retry.Policy, model string) *Service {
	if model == "" {
		model = DefaultModel
	}
	return &Service{
		completer: completer,
		policy:    policy.WithLabel("extract"),
		model:     model,
	}
}

// ExtractText transcribes all text in the image verbatim. An image with no
// text yields an empty string. Quota failures that survive the retries are
// reported as KindQuotaExceeded, anything else as KindExtractionFailed.
func (s *Service) ExtractText(ctx context.Context, image models.Image, credential string) (string, error) {
	if credential == "" {
		return "", &providers.Error{
			Kind:     providers.KindMissingCredential,
			Provider: s.completer.Name(),
			Op:       "extract",
			Message:  "missing Gemini API key for text extraction",
		}
	}

	req := providers.Request{
		Model:       s.model,
		Credential:  credential,
		Temperature: 0,
		Prompt:      buildOCRPrompt(),
		Image:       &image,
	}

	text, err := retry.Do(ctx, s.policy, func(ctx context.Context) (string, error) {
		return s.completer.Complete(ctx, req)
	})
	if err != nil {
		if providers.IsQuota(err) {
			return "", &providers.Error{Kind: providers.KindQuotaExceeded, Provider: s.completer.Name(), Op: "extract", Err: err}
		}
		return "", &providers.Error{
			Kind:     providers.KindExtractionFailed,
			Provider: s.completer.Name(),
			Op:       "extract",
			Err:      providers.Classify(s.completer.Name(), "extract", err),
		}
	}

	slog.Info("Extracted OCR text", "provider", s.completer.Name(), "model", s.model, "length", len(text))
	return strings.TrimSpace(text), nil
}

func buildOCRPrompt() string {
	return `You are performing OCR (Optical Character Recognition) on an image that may contain text in any language.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- The original language and script (do NOT translate)
- Line breaks and reading order
- Punctuation and special characters

INSTRUCTIONS:
1. Read the image carefully in its natural reading order
2. Transcribe every piece of visible text, including speech bubbles, captions, signs and sound effects
3. Keep each line of text on its own line
4. Do not add any interpretation, commentary, or explanations
5. Do not use markdown, code fences, or quotes around the output
6. If the image contains no text at all, return an empty response

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The image contains:".`
}
