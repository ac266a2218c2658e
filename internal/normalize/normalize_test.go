package normalize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "first letter", input: "hello, senior.", want: "Hello, senior."},
		{name: "already capitalized", input: "Hello", want: "Hello"},
		{name: "standalone i", input: "hi, i think so", want: "Hi, I think so"},
		{name: "contraction", input: "well, i'm here", want: "Well, I'm here"},
		{name: "words containing i untouched", input: "it is his idea", want: "It is his idea"},
		{name: "leading i", input: "i know", want: "I know"},
		{name: "leading punctuation", input: "...okay", want: "...okay"},
		{name: "non-latin", input: "안녕하세요", want: "안녕하세요"},
		{name: "accented first letter", input: "élan", want: "Élan"},
		{name: "sentence middle untouched", input: "yes. no", want: "Yes. no"},
		{name: "okina before i", input: "we flew to hawaiʻi", want: "We flew to hawaiʻi"},
		{name: "macron before i", input: "the ryōi clan", want: "The ryōi clan"},
		{name: "tilde before i", input: "mañi said no", want: "Mañi said no"},
		{name: "accented letter after i", input: "tell iñigo", want: "Tell iñigo"},
		{name: "combining accent after i", input: "so i\u0301 then i", want: "So i\u0301 then I"},
		{name: "digit next to i", input: "item 2i and i2", want: "Item 2i and i2"},
		{name: "adjacent pronouns", input: "i i i", want: "I I I"},
		{name: "non-latin neighbours", input: "그i 말했다 i", want: "그i 말했다 I"},
		{name: "punctuation around i", input: "(i) \"i\" i.", want: "(I) \"I\" I."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.input)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"hello, senior.",
		"i'm sure i saw it",
		"what is it?",
		"  leading space i",
		"ÿes i do",
		"hawaiʻi and i",
		"mañi, i said",
	}

	for _, input := range inputs {
		once := Text(input)
		twice := Text(once)
		if once != twice {
			t.Errorf("Text is not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
