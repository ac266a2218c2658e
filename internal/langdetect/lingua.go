package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// names maps the supported languages to the labels used in prompts
var names = map[lingua.Language]string{
	lingua.Korean:     "Korean",
	lingua.Japanese:   "Japanese",
	lingua.Chinese:    "Chinese",
	lingua.Spanish:    "Spanish",
	lingua.French:     "French",
	lingua.German:     "German",
	lingua.Portuguese: "Portuguese",
	lingua.Italian:    "Italian",
	lingua.Russian:    "Russian",
	lingua.Vietnamese: "Vietnamese",
	lingua.Thai:       "Thai",
}

// Guess returns the English name of the most likely source language of
// text, or "" when the text is too short or the detector is unsure.
func Guess(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 2 {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}
	return names[language]
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		languages := make([]lingua.Language, 0, len(names))
		for lang := range names {
			languages = append(languages, lang)
		}
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build()
	})
	return detector
}
