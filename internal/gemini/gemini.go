package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/imgtranslate/internal/metrics"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Name identifies Gemini in logs, metrics and errors
const Name = "gemini"

// Gemini is a Completer backed by the Google Gemini API
type Gemini struct {
	limiter *rate.Limiter
}

// New returns a new Gemini provider. A positive requestsPerMinute caps the
// call rate across all callers sharing the provider; zero leaves it unbounded.
func New(requestsPerMinute int) *Gemini {
	g := &Gemini{}
	if requestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return g
}

func (g *Gemini) Name() string {
	return Name
}

// Complete sends the prompt, and the image when present, to Gemini and
// returns the concatenated text of the first candidate. A response without
// text yields an empty string.
func (g *Gemini) Complete(ctx context.Context, req providers.Request) (string, error) {
	if req.Credential == "" {
		return "", &providers.Error{Kind: providers.KindMissingCredential, Provider: Name, Op: "complete"}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("failed waiting for gemini rate limiter: %w", err)
		}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(req.Credential))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	parts := make([]genai.Part, 0, 2)
	if req.Image != nil && len(req.Image.Data) > 0 {
		parts = append(parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
	}
	parts = append(parts, genai.Text(req.Prompt))

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	metrics.ProviderCallDurationSeconds.WithLabelValues(Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(Name, "error").Inc()
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	metrics.ProviderCallsTotal.WithLabelValues(Name, "success").Inc()

	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
