package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/metrics"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"golang.org/x/time/rate"
)

// DefaultBaseURL points at DeepSeek, the default OpenAI-compatible provider
const DefaultBaseURL = "https://api.deepseek.com"

// APIError is a non-200 response from a chat completions endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("received non-200 status code: %d - %s", e.StatusCode, e.Body)
}

// HTTPStatus exposes the status code for error classification
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// OpenAI is a Completer for any OpenAI-compatible chat completions API
type OpenAI struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// New returns a new OpenAI-compatible provider. name labels logs and
// metrics, baseURL defaults to DeepSeek.
func New(name, baseURL string, requestsPerMinute int) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	o := &OpenAI{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	if requestsPerMinute > 0 {
		o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return o
}

// WithHTTPClient overrides the internal HTTP client
func (o *OpenAI) WithHTTPClient(c *http.Client) *OpenAI {
	if c != nil {
		o.client = c
	}
	return o
}

func (o *OpenAI) Name() string {
	return o.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

// Complete sends a chat completion request and returns the first choice's content
func (o *OpenAI) Complete(ctx context.Context, req providers.Request) (string, error) {
	if req.Credential == "" {
		return "", &providers.Error{Kind: providers.KindMissingCredential, Provider: o.name, Op: "complete"}
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("failed waiting for %s rate limiter: %w", o.name, err)
		}
	}

	body := chatRequest{
		Model:       req.Model,
		Messages:    buildMessages(req),
		Temperature: req.Temperature,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential)

	start := time.Now()
	resp, err := o.client.Do(httpReq)
	metrics.ProviderCallDurationSeconds.WithLabelValues(o.name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(o.name, "error").Inc()
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderCallsTotal.WithLabelValues(o.name, "error").Inc()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	metrics.ProviderCallsTotal.WithLabelValues(o.name, "success").Inc()

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", nil
	}

	return response.Choices[0].Message.Content, nil
}

func buildMessages(req providers.Request) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}

	if req.Image == nil || len(req.Image.Data) == 0 {
		return append(messages, chatMessage{Role: "user", Content: req.Prompt})
	}

	dataURL := "data:" + req.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data)
	return append(messages, chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: req.Prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		},
	})
}
