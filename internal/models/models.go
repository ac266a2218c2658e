package models

import "time"

// Status is the lifecycle state of a batch item
type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// UnknownLanguage is reported when no language could be determined
const UnknownLanguage = "Unknown"

// Image is an uploaded image held in memory for the lifetime of its item
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// BatchItem represents one uploaded image and its translation state
type BatchItem struct {
	ID                  string             `json:"id"`
	Filename            string             `json:"filename"`
	Image               Image              `json:"image"`
	Status              Status             `json:"status"`
	Result              *TranslationResult `json:"result,omitempty"`
	Error               string             `json:"error,omitempty"`
	CredentialsRequired bool               `json:"credentials_required,omitempty"`
	Attempt             int                `json:"attempt"`
	Provider            string             `json:"provider,omitempty"`
	LanguageHint        string             `json:"language_hint,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Terminal reports whether the item has finished its latest attempt
func (i BatchItem) Terminal() bool {
	return i.Status == StatusSuccess || i.Status == StatusError
}

// TranslationResult is the segmented translation of a single image
type TranslationResult struct {
	DetectedLanguage string    `json:"detectedLanguage"`
	Segments         []Segment `json:"segments"`
}

// Segment pairs a source-language text unit with its English translation
type Segment struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// EmptyResult is returned when an image contains no text
func EmptyResult() *TranslationResult {
	return &TranslationResult{
		DetectedLanguage: UnknownLanguage,
		Segments:         []Segment{},
	}
}

// Credentials are the resolved API keys for a single translation attempt.
// Any of them may be empty.
type Credentials struct {
	Gemini        string
	GeminiPremium string
	DeepSeek      string
}

// Extraction returns the key used for text extraction
func (c Credentials) Extraction() string {
	if c.Gemini != "" {
		return c.Gemini
	}
	return c.GeminiPremium
}
