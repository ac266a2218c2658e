package providers

import (
	"context"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
)

// Request represents a single completion call against an LLM provider
type Request struct {
	Model       string
	Credential  string
	Temperature float64
	System      string
	Prompt      string
	// Image is attached to the user turn when set
	Image *models.Image
	// JSON asks the provider for a JSON document instead of free text
	JSON bool
}

// Completer is the opaque complete(prompt, image) -> text capability of a provider
type Completer interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}
