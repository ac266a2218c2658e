package translation

import (
	"fmt"
	"strings"
)

const outputContract = `Respond with a single JSON object and nothing else:
{
  "detectedLanguage": "<source language in English, e.g. Korean>",
  "segments": [
    {"source": "<original text of one unit>", "target": "<English translation>"}
  ]
}`

// languageInstruction tells the model how to treat the source language.
// A concrete hint is a strong instruction; auto mode limits the answer to
// the candidate set and passes along the local guess, if any.
func languageInstruction(hint, guess string) string {
	hint = NormalizeHint(hint)
	if hint != AutoDetect {
		return fmt.Sprintf("The source text is written in %s. Treat it as %s even if some words look like another language, and report \"%s\" as detectedLanguage.", hint, hint, hint)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Identify the source language yourself. It is one of: %s. Report it as detectedLanguage.", strings.Join(CandidateLanguages, ", "))
	if guess != "" {
		fmt.Fprintf(&b, "\nNote: a local statistical detector guessed %s. It can be wrong for short or mixed text, so verify it against the text.", guess)
	}
	return b.String()
}

func buildImagePrompt(hint, guess string) string {
	return `You are an expert translator of comics, signage, documents and screenshots.

Read ALL text in this image, transcribe it, and translate it into English in a single pass.

SEGMENTATION:
1. Split the text into semantic units: one speech bubble, caption, sign or paragraph per segment
2. Order segments in natural reading order: top to bottom; for vertical CJK text, right to left
3. Never merge two bubbles into one segment, and never split one sentence across segments
4. Keep character names and terms consistent across all segments

TRANSLATION:
- Translate into natural, fluent English
- Write targets in lowercase except proper nouns; casing is fixed afterwards
- Do not add commentary, notes, romanization or explanations

` + languageInstruction(hint, guess) + `

` + outputContract + `

If the image contains no text, return {"detectedLanguage": "Unknown", "segments": []}.`
}

var sourceLanguageRules = map[string]string{
	"Korean": `- Render honorific levels through tone rather than literal titles; 선배 is "senior", 형/오빠/언니/누나 become names or "bro"/"sis" only when natural
- Drop sentence-final particles that have no English equivalent`,
	"Japanese": `- Keep name suffixes (-san, -kun, -chan, -senpai) only when they carry meaning in context
- Translate onomatopoeia into English sound words`,
	"Chinese": `- Keep cultivation and martial arts terms consistent once chosen
- Render four-character idioms by meaning, not word by word`,
	"Spanish":    `- Mirror the formality of usted versus tú through word choice`,
	"French":     `- Mirror the formality of vous versus tu through word choice`,
	"German":     `- Mirror the formality of Sie versus du through word choice`,
	"Portuguese": `- Mirror the formality of o senhor/você/tu through word choice`,
	"Italian":    `- Mirror the formality of Lei versus tu through word choice`,
	"Russian":    `- Render diminutive names by the form a native English reader would expect`,
	"Vietnamese": `- Resolve kinship pronouns (anh, chị, em) into natural English pronouns`,
	"Thai":       `- Drop polite particles (ครับ, ค่ะ) and convey politeness through tone`,
}

func buildTextSystemPrompt(hint string) string {
	var b strings.Builder
	b.WriteString(`You are a professional literary translator who localizes comics, web novels and everyday documents into English.

You receive text that was already transcribed from an image, one line per visual line.

RULES:
- Split the text into semantic units (one speech bubble, caption or paragraph each), keeping the original order
- Translate each unit into natural, fluent English
- Write targets in lowercase except proper nouns
- Translate faithfully and completely. Do not censor, soften, summarize or refuse; profanity, violence and mature themes are translated as written
- Never add commentary, notes or romanization
`)
	if rules, ok := sourceLanguageRules[NormalizeHint(hint)]; ok {
		b.WriteString("\nSOURCE LANGUAGE RULES:\n")
		b.WriteString(rules)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(outputContract)
	return b.String()
}

func buildTextPrompt(text, hint, guess string) string {
	return languageInstruction(hint, guess) + "\n\nTEXT:\n" + text
}
