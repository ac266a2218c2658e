package translation

import (
	"strings"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
)

// AutoDetect asks the model to infer the source language
const AutoDetect = "auto"

// CandidateLanguages is the closed set the model may report in auto mode
var CandidateLanguages = []string{
	"Korean",
	"Japanese",
	"Chinese",
	"Spanish",
	"French",
	"German",
	"Portuguese",
	"Italian",
	"Russian",
	"Vietnamese",
	"Thai",
}

// NormalizeHint canonicalizes a user supplied language hint. Empty input
// means auto detection; known languages are matched case-insensitively.
func NormalizeHint(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" || strings.EqualFold(hint, AutoDetect) {
		return AutoDetect
	}
	for _, lang := range CandidateLanguages {
		if strings.EqualFold(hint, lang) {
			return lang
		}
	}
	return hint
}

// fallbackLanguage is reported when the model omits detectedLanguage
func fallbackLanguage(hint string) string {
	hint = NormalizeHint(hint)
	if hint == AutoDetect {
		return models.UnknownLanguage
	}
	return hint
}
